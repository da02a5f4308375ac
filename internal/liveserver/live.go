// Package liveserver implements the HTTP target and forward proxy that
// adapter tests talk to while a run is in progress.
package liveserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const maxMultipartMemory = 32 << 20

// LiveServer is the target server adapter tests send requests to
type LiveServer struct {
	logger  *slog.Logger
	tls     bool
	handler http.Handler
}

// NewLiveServer builds the router. tls only affects what /ssl reports;
// certificates are supplied to Serve.
func NewLiveServer(logger *slog.Logger, tls bool) *LiveServer {
	s := &LiveServer{logger: logger, tls: tls}

	r := mux.NewRouter()
	r.HandleFunc("/echo", s.echo)
	r.HandleFunc("/echo_header", s.echoHeader)
	r.HandleFunc("/multipart", s.multipart).Methods(http.MethodPost, http.MethodPut)
	r.HandleFunc("/204", s.noContent)
	r.HandleFunc("/slow", s.slow)
	r.HandleFunc("/ssl", s.ssl)
	r.HandleFunc("/who-am-i", s.whoAmI)
	r.HandleFunc("/stream", s.stream)
	r.HandleFunc("/status/{code:[0-9]{3}}", s.status)
	r.Use(s.logRequests)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})
	s.handler = c.Handler(r)
	return s
}

// Handler returns the server's root handler
func (s *LiveServer) Handler() http.Handler {
	return s.handler
}

func (s *LiveServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// echo answers "<method> <body>" for requests with a body and
// "<method> ?<query>" otherwise
func (s *LiveServer) echo(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	if len(body) > 0 {
		fmt.Fprintf(w, "%s %s", r.Method, body)
		return
	}
	fmt.Fprintf(w, "%s ?%s", r.Method, r.URL.RawQuery)
}

// echoHeader returns the value of the header named by the "name" query param
func (s *LiveServer) echoHeader(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name parameter", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, r.Header.Get(name)) //nolint:errcheck
}

type multipartReply struct {
	Fields map[string][]string `json:"fields"`
	Files  map[string]string   `json:"files"`
}

// multipart reports the fields and file names of a multipart form
func (s *LiveServer) multipart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reply := multipartReply{
		Fields: r.MultipartForm.Value,
		Files:  make(map[string]string),
	}
	for field, headers := range r.MultipartForm.File {
		if len(headers) > 0 {
			reply.Files[field] = headers[0].Filename
		}
	}
	writeJSON(w, reply)
}

func (s *LiveServer) noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// slow sleeps before answering so clients can exercise their timeouts
func (s *LiveServer) slow(w http.ResponseWriter, r *http.Request) {
	delay := 10 * time.Second
	if raw := r.URL.Query().Get("seconds"); raw != "" {
		if secs, err := strconv.ParseFloat(raw, 64); err == nil {
			delay = time.Duration(secs * float64(time.Second))
		}
	}
	select {
	case <-time.After(delay):
		io.WriteString(w, "ok") //nolint:errcheck
	case <-r.Context().Done():
	}
}

func (s *LiveServer) ssl(w http.ResponseWriter, r *http.Request) {
	io.WriteString(w, strconv.FormatBool(r.TLS != nil)) //nolint:errcheck
}

// whoAmI reports the user agent and, when proxied, the proxy's forwarding header
func (s *LiveServer) whoAmI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"user_agent": r.UserAgent(),
		"remote":     r.RemoteAddr,
		"via":        r.Header.Get("Via"),
	})
}

// stream writes the body in flushed chunks
func (s *LiveServer) stream(w http.ResponseWriter, r *http.Request) {
	chunks := 3
	if raw := r.URL.Query().Get("chunks"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			chunks = n
		}
	}
	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/plain")
	for i := 0; i < chunks; i++ {
		fmt.Fprintf(w, "chunk %d\n", i)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *LiveServer) status(w http.ResponseWriter, r *http.Request) {
	code, _ := strconv.Atoi(mux.Vars(r)["code"])
	if code < 100 || code > 599 {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Serve runs handler on port until ctx is cancelled, then shuts down
// gracefully. TLS is used when both certFile and keyFile are set.
func Serve(ctx context.Context, port int, handler http.Handler, certFile, keyFile string, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
	return serveListener(ctx, ln, handler, certFile, keyFile, logger)
}

func serveListener(ctx context.Context, ln net.Listener, handler http.Handler, certFile, keyFile string, logger *slog.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String(), "tls", certFile != "")
		if certFile != "" && keyFile != "" {
			errCh <- server.ServeTLS(ln, certFile, keyFile)
		} else {
			errCh <- server.Serve(ln)
		}
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
