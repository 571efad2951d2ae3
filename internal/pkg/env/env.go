package env

import (
	"encoding"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
)

// OverrideStruct sets the fields tagged with `env:"NAME"` from the
// environment, descending into nested structs and struct pointers. Fields
// whose variable is unset keep their value. Nil struct pointers are
// allocated.
func OverrideStruct(v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("env: OverrideStruct expects a non-nil pointer to a struct, got %T", v)
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("env: OverrideStruct expects a pointer to a struct, got %T (%s)", v, val.Kind())
	}

	return overrideFields(val)
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

func overrideFields(val reflect.Value) error {
	typ := val.Type()

	for i := range typ.NumField() {
		field := typ.Field(i)
		fieldValue := val.Field(i)

		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get("env")

		if name == "" {
			if err := descend(field, fieldValue); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			slog.Debug("Environment variable not set for field", "env", name, "field", field.Name)
			continue
		}

		if err := setField(fieldValue, raw); err != nil {
			return fmt.Errorf("env: set field %s from %s: %w", field.Name, name, err)
		}
	}

	return nil
}

func descend(field reflect.StructField, fieldValue reflect.Value) error {
	switch {
	case fieldValue.Kind() == reflect.Struct:
		if err := overrideFields(fieldValue); err != nil {
			return fmt.Errorf("nested struct %s: %w", field.Name, err)
		}
	case fieldValue.Kind() == reflect.Ptr && fieldValue.Type().Elem().Kind() == reflect.Struct:
		if fieldValue.IsNil() {
			fieldValue.Set(reflect.New(fieldValue.Type().Elem()))
		}
		if err := overrideFields(fieldValue.Elem()); err != nil {
			return fmt.Errorf("nested struct %s: %w", field.Name, err)
		}
	}
	return nil
}

func setField(fieldValue reflect.Value, raw string) error {
	if fieldValue.CanAddr() && fieldValue.Addr().Type().Implements(textUnmarshalerType) {
		return fieldValue.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw))
	}

	switch fieldValue.Kind() {
	case reflect.String:
		fieldValue.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fieldValue.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		fieldValue.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fieldValue.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		fieldValue.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", fieldValue.Kind())
	}
	return nil
}

// Env returns the value of the environment variable named by the key.
// If the variable is not present in the environment, it returns the provided fallback value.
func Env(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
