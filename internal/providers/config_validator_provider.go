package providers

import (
	"errors"

	"github.com/gookit/validate"

	"mediabot/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}
	if cv.conf.Storage.Driver == "postgres" && cv.conf.Storage.DSN == "" {
		return errors.New("storage.dsn is required for the postgres driver")
	}
	if cv.conf.Storage.Driver == "file" && cv.conf.Storage.Dir == "" {
		return errors.New("storage.dir is required for the file driver")
	}
	if cv.conf.Events.Enabled && cv.conf.Events.URL == "" {
		return errors.New("events.url is required when events are enabled")
	}
	return nil
}
