package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// RespondWithError writes an {"error": ...} response in JSON format
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// ValidationIssue is one field-level validation failure in an error body.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationErrorBody struct {
	Error   string            `json:"error"`
	Details []ValidationIssue `json:"details"`
}

// RespondWithValidationError writes {"error": ..., "details": [...]} built
// from a validator error.
func RespondWithValidationError(w http.ResponseWriter, err error) {
	body := validationErrorBody{Error: "Dados inválidos"}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			body.Details = append(body.Details, ValidationIssue{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
	}

	RespondWithJSON(w, http.StatusBadRequest, body)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "e-mail inválido"
	case "oneof":
		return "valor fora do conjunto permitido: " + fe.Param()
	case "min":
		return "valor mínimo: " + fe.Param()
	case "max":
		return "valor máximo: " + fe.Param()
	case "datetime":
		return "data inválida (formato esperado: " + fe.Param() + ")"
	default:
		return "valor inválido"
	}
}
