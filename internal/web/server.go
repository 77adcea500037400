package web

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"wenv/internal/errors"
	"wenv/internal/fsys"
	"wenv/internal/logging"
	"wenv/internal/model"
	"wenv/internal/repair"
	"wenv/internal/store"
)

//go:embed help.md
var helpMD string

// Server exposes the store and the repair service over a local HTTP API.
type Server struct {
	store       store.Reader
	service     *repair.Service
	defaultName string
	dryRun      bool
	fs          afero.Fs
	checker     *fsys.Checker
	logger      zerolog.Logger
}

func NewServer(s store.Reader, svc *repair.Service, defaultName string, dryRun bool) *Server {
	srv := &Server{
		store:       s,
		service:     svc,
		defaultName: defaultName,
		dryRun:      dryRun,
		logger:      logging.GetLogger("web"),
	}
	return srv.WithFS(afero.NewOsFs())
}

// WithFS sets the filesystem browsed by /api/ls and /api/which.
func (s *Server) WithFS(root afero.Fs) *Server {
	s.fs = root
	s.checker = fsys.NewChecker(root, true)
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vars", s.handleVars)
	mux.HandleFunc("GET /api/var", s.handleVar)
	mux.HandleFunc("GET /api/path", s.handlePath)
	mux.HandleFunc("POST /api/path/fix", s.handleFix)
	mux.HandleFunc("GET /api/ls", s.handleLs)
	mux.HandleFunc("GET /api/which", s.handleWhich)
	mux.HandleFunc("GET /api/help", handleHelp)
	return s.guard(mux)
}

// guard only serves requests addressed to a loopback host, which rules out
// DNS rebinding, and refuses state-changing requests sent from another
// origin.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isLoopbackHost(r.Host) {
			s.logger.Warn().Str("host", r.Host).Msg("Rejected non-local host")
			http.Error(w, "forbidden host", http.StatusForbidden)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if origin := r.Header.Get("Origin"); origin != "" && !sameHost(origin, r.Host) {
				s.logger.Warn().Str("origin", origin).Msg("Rejected cross-origin request")
				http.Error(w, "cross-origin request refused", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isLoopbackHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	fmt.Printf("Starting wenv web server at http://%s\n", displayAddr(addr))
	s.logger.Info().Str("addr", addr).Bool("dryRun", s.dryRun).Msg("Web server starting")
	return http.ListenAndServe(addr, s.Handler())
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func (s *Server) handleVars(w http.ResponseWriter, r *http.Request) {
	vars, err := s.store.Enumerate()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, vars)
}

func (s *Server) handleVar(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	value, err := s.store.Get(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, model.Variable{Name: name, Value: value})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	mode, ok := model.ParseMode(r.URL.Query().Get("mode"))
	if !ok {
		http.Error(w, "mode must be report or filter", http.StatusBadRequest)
		return
	}

	var (
		report model.RepairReport
		err    error
	)
	if mode == model.ModeFilter {
		report, err = s.service.Plan(r.Context(), s.nameFrom(r))
	} else {
		report, err = s.service.Inspect(r.Context(), s.nameFrom(r))
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleFix(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Plan(r.Context(), s.nameFrom(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.Apply(report, s.dryRun)
	if err != nil {
		// The plan is still valid; send it so the client can show it again.
		s.writeErrorWith(w, err, &res)
		return
	}
	writeJSON(w, res)
}

// LsEntry is one item of a directory listing.
type LsEntry struct {
	Name    string `json:"Name"`
	IsDir   bool   `json:"IsDir"`
	Size    int64  `json:"Size"`
	Mode    string `json:"Mode"`
	ModTime string `json:"ModTime"`
}

func (s *Server) handleLs(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	infos, err := afero.ReadDir(s.fs, s.checker.Expand(path))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	entries := make([]LsEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, LsEntry{
			Name:    info.Name(),
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			Mode:    info.Mode().String(),
			ModTime: info.ModTime().Format("Jan 02 15:04"),
		})
	}
	writeJSON(w, entries)
}

// WhichMatch names the list entry that provides a command.
type WhichMatch struct {
	Index       int    `json:"Index"`
	Entry       string `json:"Entry"`
	MatchedFile string `json:"MatchedFile"`
}

// handleWhich finds, in list order, the entries holding a file whose name
// starts with query. An exact name match wins within a directory.
func (s *Server) handleWhich(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	report, err := s.service.Inspect(r.Context(), s.nameFrom(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	matches := []WhichMatch{}
	seen := make(map[string]bool)
	for _, it := range report.Items {
		if it.Outcome != model.Valid || seen[it.Raw] {
			continue
		}
		seen[it.Raw] = true

		infos, err := afero.ReadDir(s.fs, s.checker.Expand(it.Raw))
		if err != nil {
			continue
		}
		matched := ""
		for _, info := range infos {
			if info.IsDir() {
				continue
			}
			name := strings.ToLower(info.Name())
			if name == query {
				matched = info.Name()
				break
			}
			if matched == "" && strings.HasPrefix(name, query) {
				matched = info.Name()
			}
		}
		if matched != "" {
			matches = append(matches, WhichMatch{Index: it.Index, Entry: it.Raw, MatchedFile: matched})
		}
	}
	writeJSON(w, matches)
}

func handleHelp(w http.ResponseWriter, r *http.Request) {
	text := strings.ReplaceAll(helpMD, "{{VERSION}}", model.Version)
	w.Header().Set("Content-Type", "text/markdown")
	w.Write([]byte(text))
}

func (s *Server) nameFrom(r *http.Request) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}
	return s.defaultName
}

// statusFor maps store error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrKeyNotFound, errors.ErrBackupNotFound:
		return http.StatusNotFound
	case errors.ErrUnsupportedValueType:
		return http.StatusUnprocessableEntity
	case errors.ErrPermissionDenied:
		return http.StatusForbidden
	case errors.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeErrorWith(w, err, nil)
}

// writeErrorWith sends the error and, when res is set, the result that was
// computed before the failure.
func (s *Server) writeErrorWith(w http.ResponseWriter, err error, res *repair.Result) {
	status := statusFor(err)
	s.logger.Warn().Err(err).Int("status", status).Msg("Request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Code   errors.ErrorCode `json:"code"`
		Error  string           `json:"error"`
		Result *repair.Result   `json:"result,omitempty"`
	}{errors.GetCode(err), err.Error(), res})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
