package middleware

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

// HeaderSessionID заголовок анонимной сессии посетителя
const HeaderSessionID = "X-Session-ID"

const msgMissingSession = "отсутствует заголовок X-Session-ID"

// SessionID возвращает идентификатор сессии запроса (пустая строка, если нет)
func SessionID(r *http.Request) string {
	return r.Header.Get(HeaderSessionID)
}

// Session требует заголовок X-Session-ID
// Вешается на маршруты, меняющие состояние от имени анонимной сессии
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionID(r) == "" {
			handlers.RespondError(w, http.StatusUnauthorized, msgMissingSession)
			return
		}
		next.ServeHTTP(w, r)
	})
}
