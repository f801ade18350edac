// Package config is the environment-variable configuration loader the
// composition root uses, grounded verbatim on the teacher's
// common.SetConfigFromEnvVars/InitLocalEnvConfig
// (_examples/LerianStudio-midaz/common/os.go): a reflect-driven `env:"..."`
// tag walker plus a .env loader for local development.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// GetenvOrDefault returns os.Getenv(key), or defaultValue if unset or blank.
func GetenvOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return defaultValue
}

// GetenvBoolOrDefault parses os.Getenv(key) as a bool, falling back to
// defaultValue on any parse failure.
func GetenvBoolOrDefault(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}

	return v
}

// GetenvIntOrDefault parses os.Getenv(key) as an int64, falling back to
// defaultValue on any parse failure.
func GetenvIntOrDefault(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}

	return v
}

var envLoadedOnce sync.Once

// InitLocalEnvConfig loads a .env file once per process when ENV_NAME is
// "local" (the default), so local development doesn't need exported shell
// variables. It is a no-op — and safe to call repeatedly — in any other
// environment.
func InitLocalEnvConfig() {
	if GetenvOrDefault("ENV_NAME", "local") != "local" {
		return
	}

	envLoadedOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// SetConfigFromEnvVars populates every field of the struct pointed to by s
// that carries an `env:"KEY"` tag, by kind (string, bool, or an int
// variant). s must be a non-nil pointer to a struct.
func SetConfigFromEnvVars(s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errors.New("s must be a non-nil pointer")
	}

	elem := v.Elem()
	t := elem.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		key, ok := field.Tag.Lookup("env")
		if !ok || key == "" {
			continue
		}

		fv := elem.Field(i)
		if !fv.CanSet() {
			continue
		}

		switch fv.Kind() {
		case reflect.Bool:
			fv.SetBool(GetenvBoolOrDefault(key, false))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fv.SetInt(GetenvIntOrDefault(key, 0))
		default:
			fv.SetString(os.Getenv(key))
		}
	}

	return nil
}
