package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const visitorCookieName = "petjoy_session"

// VisitorMiddleware assigns every browser a stable visitor id, carried in a
// signed cookie. The id keys the session cart and survives until the cookie
// expires or the visitor clears it.
type VisitorMiddleware struct {
	store sessions.Store
}

func NewVisitorMiddleware(secret []byte) *VisitorMiddleware {
	store := sessions.NewCookieStore(secret)
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true

	return &VisitorMiddleware{store: store}
}

func (m *VisitorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := m.store.Get(r, visitorCookieName) // a bad cookie yields a fresh session

		visitorID, ok := session.Values["visitor_id"].(string)
		if !ok || visitorID == "" {
			visitorID = uuid.New().String()
			session.Values["visitor_id"] = visitorID
			if err := session.Save(r, w); err != nil {
				respondError(w, http.StatusInternalServerError, "session_error", "could not persist session")
				return
			}
		}

		ctx := context.WithValue(r.Context(), "visitor_id", visitorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CustomerMiddleware extracts the optional authenticated customer id.
// In production this would come from parsing and validating a JWT token;
// registration/login mechanics live outside this service.
func CustomerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-Customer-ID")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		customerID, err := strconv.ParseInt(header, 10, 64)
		if err != nil || customerID <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), "customer_id", customerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getVisitorIDFromContext(ctx context.Context) string {
	if visitorID, ok := ctx.Value("visitor_id").(string); ok {
		return visitorID
	}
	return ""
}

func getCustomerIDFromContext(ctx context.Context) *int64 {
	if customerID, ok := ctx.Value("customer_id").(int64); ok {
		return &customerID
	}
	return nil
}
