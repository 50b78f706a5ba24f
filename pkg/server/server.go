package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/pinserve/internal/logger"
	"github.com/bastiangx/pinserve/internal/utils"
	"github.com/bastiangx/pinserve/pkg/config"
	"github.com/bastiangx/pinserve/pkg/detect"
	"github.com/bastiangx/pinserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// defaultStream is used for requests that do not name their input stream.
const defaultStream = "default"

// Server handles the IPC for classification and suggestions
type Server struct {
	suggester atomic.Pointer[suggest.Suggester]
	tracker   *suggest.Tracker
	config    *config.Watcher
	decoder   *msgpack.Decoder
	encoder   *msgpack.Encoder
	writeMu   sync.Mutex
	pending   sync.WaitGroup
	requests  atomic.Int64
	log       *log.Logger
}

// NewServer creates a server reading requests from r and writing responses to w.
// A nil suggester turns candidate lookups off; classification still works.
func NewServer(s *suggest.Suggester, tracker *suggest.Tracker, cfg *config.Watcher, r io.Reader, w io.Writer) *Server {
	if tracker == nil {
		tracker = suggest.NewTracker(cfg.Config().Suggest.Debounce())
	}
	srv := &Server{
		tracker: tracker,
		config:  cfg,
		decoder: msgpack.NewDecoder(r),
		encoder: msgpack.NewEncoder(w),
		log:     logger.New("server"),
	}
	srv.suggester.Store(s)
	return srv
}

// SetSuggester swaps the suggester used by requests decoded from now on.
func (s *Server) SetSuggester(sg *suggest.Suggester) {
	s.suggester.Store(sg)
}

// Requests returns how many requests were handled so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Start begins listening for IPC requests. It returns nil when the input is
// closed, after every pending suggestion has been answered. Cancelling ctx
// marks pending suggestions stale instead of waiting for them. Bytes that are
// not msgpack at all end the session with an ErrorResponse and an error.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.")
	defer s.pending.Wait()

	// Signal that the server is ready
	s.sendResponse(map[string]string{"status": "ready"})

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.log.Debug("Input closed, shutting down.")
				return nil
			}
			// framing is lost, nothing after this point can be trusted
			s.log.Errorf("Reading from stdin: %v", err)
			s.sendError("", fmt.Sprintf("Corrupt msgpack stream: %v", err), 400)
			return err
		}
		s.requests.Add(1)
		s.handleRequest(ctx, raw)
	}
}

// handleRequest routes one decoded msgpack value.
func (s *Server) handleRequest(ctx context.Context, raw msgpack.RawMessage) {
	var env envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		s.log.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "Invalid msgpack request", 400)
		return
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}

	switch env.Action {
	case "":
		s.handleClassify(ctx, env.classify())
	case "get", "reload", "health":
		s.handleConfig(ConfigRequest{ID: env.ID, Action: env.Action})
	default:
		s.sendError(env.ID, fmt.Sprintf("Unknown action: %s", env.Action), 400)
	}
}

func (s *Server) handleClassify(ctx context.Context, req ClassifyRequest) {
	start := time.Now()
	cfg := s.config.Config()

	if n := utf8.RuneCountInString(req.Text); n > cfg.Server.MaxInput {
		s.log.Debugf("Text too long in request %s: %d characters", req.ID, n)
		s.sendError(req.ID, fmt.Sprintf("Text exceeds maximum length of %d characters", cfg.Server.MaxInput), 400)
		return
	}

	stream := req.Stream
	if stream == "" {
		stream = defaultStream
	}
	// every request supersedes pending suggestions on its stream, whatever its type
	ticket := s.tracker.Begin(stream)

	resp := ClassifyResponse{ID: req.ID, Type: detect.DetectInputType(req.Text)}
	switch resp.Type {
	case detect.Invalid:
		resp.Message = detect.InvalidInputMessage
	case detect.Pinyin:
		cov, _ := detect.Score(req.Text)
		resp.Coverage = &cov
		resp.Syllables = detect.Segment(req.Text)
	}

	sg := s.suggester.Load()
	if resp.Type != detect.Pinyin || !req.Suggest || sg == nil {
		resp.TimeTaken = time.Since(start).Microseconds()
		s.sendResponse(resp)
		return
	}

	limit := clampLimit(req.Limit, cfg.Server)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if ticket.Wait(ctx) {
			found := sg.Suggest(ctx, req.Text, limit)
			if ticket.Current() {
				resp.Candidates = rankCandidates(found)
			} else {
				resp.Stale = true
			}
		} else {
			resp.Stale = true
		}
		if resp.Stale {
			s.log.Debugf("Request %s superseded on stream %q", req.ID, stream)
		}
		resp.TimeTaken = time.Since(start).Microseconds()
		s.sendResponse(resp)
	}()
}

func (s *Server) handleConfig(req ConfigRequest) {
	resp := ConfigResponse{ID: req.ID, Status: "ok"}
	switch req.Action {
	case "health":
		s.sendResponse(resp)
		return
	case "reload":
		if err := s.config.Reload(); err != nil {
			s.log.Warnf("Config reload failed: %v", err)
			resp.Status = "error"
			resp.Error = err.Error()
		}
	}

	cfg := s.config.Config()
	resp.Path = config.GetActiveConfigPath(s.config.Path())
	resp.MaxInput = cfg.Server.MaxInput
	resp.DefaultLimit = cfg.Server.DefaultLimit
	resp.MaxLimit = cfg.Server.MaxLimit
	resp.DebounceMs = cfg.Suggest.DebounceMs
	resp.CacheTTLs = cfg.Backend.CacheTTLs
	s.sendResponse(resp)
}

// clampLimit applies the configured default and ceiling to a requested count.
func clampLimit(n int, sc config.ServerConfig) int {
	if n < 1 {
		return sc.DefaultLimit
	}
	if n > sc.MaxLimit {
		return sc.MaxLimit
	}
	return n
}

func rankCandidates(found []string) []Candidate {
	ranks := utils.CreateRankList(len(found))
	out := make([]Candidate, len(found))
	for i, w := range found {
		out[i] = Candidate{Text: w, Rank: ranks[i]}
	}
	return out
}

// sendResponse encodes one response. Suggestion goroutines share the encoder.
func (s *Server) sendResponse(response any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}
