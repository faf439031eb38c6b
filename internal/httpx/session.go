package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

const sessionCookie = "sid"

// sessionID: ambil session id dari cookie, mint yg baru kalau belum ada.
// Cuma dipakai sebagai key cart — bukan auth, bukan session framework.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}
