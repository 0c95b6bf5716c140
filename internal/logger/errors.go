package logger

import (
	"errors"
	"strings"

	"github.com/localrivet/polysum/internal/errortypes"
)

// maxStackLines bounds how much of a captured stack is attached to a log line.
const maxStackLines = 3

// LogError logs err on the default logger. Structured errors carry their
// type, fields and the top of their stack.
func LogError(err error) {
	if err == nil {
		return
	}

	var appErr *errortypes.AppError
	if !errors.As(err, &appErr) {
		Error("Unstructured error: %v", err)
		return
	}

	fields := make(map[string]interface{}, len(appErr.Fields)+2)
	for k, v := range appErr.Fields {
		fields[k] = v
	}
	fields["error_type"] = string(appErr.Type)
	if stack := topOfStack(appErr.StackInfo, maxStackLines); stack != "" {
		fields["stack"] = stack
	}

	GetDefaultLogger().WithFields(fields).Error("%s", appErr.Error())
}

// topOfStack returns the first n frames of a captured stack joined by " > ".
func topOfStack(stack string, n int) string {
	lines := strings.Split(strings.TrimSpace(stack), "\n")
	out := make([]string, 0, n)
	for _, line := range lines {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		file, fn, _ := strings.Cut(line, " ")
		if i := strings.LastIndex(fn, "/"); i >= 0 {
			fn = fn[i+1:]
		}
		out = append(out, strings.TrimSpace(truncatePath(file)+" "+fn))
		if len(out) == n {
			break
		}
	}
	return strings.Join(out, " > ")
}

// truncatePath keeps only the last two segments of a frame's file path.
func truncatePath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
