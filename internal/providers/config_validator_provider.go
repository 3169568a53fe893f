package providers

import (
	"fmt"
	"tad/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the struct tags plus the cross-field rules the tags cannot
// express (each persistence backend needs its own target path).
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}

	switch cv.conf.Persistence.Backend {
	case "file":
		if cv.conf.Persistence.FilePath == "" {
			return fmt.Errorf("invalid config: persistence.filePath is required for the file backend")
		}
	case "sqlite":
		if cv.conf.Persistence.SqlitePath == "" {
			return fmt.Errorf("invalid config: persistence.sqlitePath is required for the sqlite backend")
		}
	}
	return nil
}
