package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

// validate проверяет только наличие полей (тег required).
// Формат email, длина пароля и содержимое адреса не проверяются.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибке хотим имена полей так, как их шлёт клиент
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			name, _, _ = strings.Cut(f.Tag.Get("json"), ",")
		}
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct превращает ошибки validator в ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &serr.ValidationError{Fields: fields}
}

// isJSON сообщает, пришло ли тело как application/json.
func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get(ContentType))
	return err == nil && mt == JsonContentType
}

// decodeBody читает JSON или форму в dst.
//
// Для формы fill получает разобранные значения; для JSON используется
// encoding/json по тегам dst. Неизвестные поля игнорируются.
func decodeBody(r *http.Request, dst any, fill func(get func(string) string)) error {
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return serr.ErrBadJSON
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return serr.ErrInvalidInput
	}
	fill(r.PostForm.Get)
	return nil
}
