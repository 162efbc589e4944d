package middleware

import (
	"encoding/json"
	"net/http"

	"go-auth-service/internal/model"
)

func writeJSONError(w http.ResponseWriter, status int, body model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
