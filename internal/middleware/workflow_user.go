package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const workflowUserKey ctxKey = "workflow_user"

// WorkflowUserHeader permite identificar al usuario final ante el workflow
// (campo "user" del request). Sin header se usa defaultUser.
const WorkflowUserHeader = "X-Workflow-User"

const maxWorkflowUserLen = 64

// WorkflowUser setea en el contexto el usuario que se enviará al workflow.
func WorkflowUser(defaultUser string) func(http.Handler) http.Handler {
	defaultUser = strings.TrimSpace(defaultUser)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := strings.TrimSpace(r.Header.Get(WorkflowUserHeader))
			if user == "" || len(user) > maxWorkflowUserLen {
				user = defaultUser
			}
			if user == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), workflowUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetWorkflowUser(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(workflowUserKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
