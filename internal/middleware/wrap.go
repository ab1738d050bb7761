package middleware

import "net/http"

// ResponseRecorder wraps ResponseWriter, captures the status code, and runs
// registered hooks just before the first byte or header is written. Hooks let
// the session middleware attach its cookie only when something still can be.
type ResponseRecorder struct {
	http.ResponseWriter
	status      int
	wrote       bool
	beforeWrite []func(http.ResponseWriter)
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, status: http.StatusOK}
}

// SetBeforeWrite registers fn to run once, immediately before headers flush.
func (rw *ResponseRecorder) SetBeforeWrite(fn func(http.ResponseWriter)) {
	rw.beforeWrite = append(rw.beforeWrite, fn)
}

func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	rw.flushHooks()
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *ResponseRecorder) Write(b []byte) (int, error) {
	rw.flushHooks()
	return rw.ResponseWriter.Write(b)
}

// Flush forwards streaming flushes when the underlying writer supports them.
func (rw *ResponseRecorder) Flush() {
	rw.flushHooks()
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Status returns the recorded status code.
func (rw *ResponseRecorder) Status() int { return rw.status }

// Wrote reports whether any response bytes or headers went out.
func (rw *ResponseRecorder) Wrote() bool { return rw.wrote }

func (rw *ResponseRecorder) flushHooks() {
	if rw.wrote {
		return
	}
	rw.wrote = true
	for _, fn := range rw.beforeWrite {
		fn(rw.ResponseWriter)
	}
}
