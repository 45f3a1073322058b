// Package stubserver is a local assessment backend for development and
// demos. Its branching is deterministic: the reachable path is a pure
// function of the recorded answers, so the same inputs always produce
// the same flow.
package stubserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/gapscan/gapscan/internal/catalog"
	"github.com/gapscan/gapscan/internal/flow"
	"github.com/gapscan/gapscan/internal/scoring"
)

// ExpiredAssessmentID always answers 404, for exercising the client's
// hard-reset path.
const ExpiredAssessmentID = "expired"

// UnprovisionedAssessmentID answers the intake endpoint with an empty
// result, for exercising the client's intake gate.
const UnprovisionedAssessmentID = "unprovisioned"

type submission struct {
	AssessmentID string         `json:"assessment_id"`
	QID          string         `json:"q_id"`
	AID          string         `json:"a_id"`
	Score        int            `json:"score"`
	PackID       string         `json:"pack_id"`
	IsDeferred   bool           `json:"is_deferred"`
	IsFlagged    bool           `json:"is_flagged"`
	Evidence     map[string]any `json:"evidence"`
	Origin       string         `json:"origin"`
	SessionID    string         `json:"session_id"`
}

// session is the server-side record of one assessment.
type session struct {
	responses map[string]flow.AnswerValue
	deferred  map[string]bool
	flagged   map[string]bool
}

// Server holds all assessment sessions in memory. Sessions are created
// on first touch, so any assessment id works out of the box.
type Server struct {
	log *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, sessions: make(map[string]*session)}
}

// Handler returns the HTTP handler implementing the assessment API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/assessments/{id}/questions", s.handleQuestions).Methods("GET")
	r.HandleFunc("/assessments/{id}/resume", s.handleResume).Methods("GET")
	r.HandleFunc("/assessments/{id}/intake", s.handleIntake).Methods("GET")
	r.HandleFunc("/submissions", s.handleSubmit).Methods("POST")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	return r
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == ExpiredAssessmentID {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions":         fixtureQuestions,
		"evidence_policies": catalog.SeedPolicies(),
	})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == ExpiredAssessmentID {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	sess := s.session(id)

	s.mu.Lock()
	state, _ := s.resumptionState(sess)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	switch id {
	case ExpiredAssessmentID:
		writeError(w, http.StatusNotFound, "assessment not found")
	case UnprovisionedAssessmentID:
		writeJSON(w, http.StatusOK, []intakeResponse{})
	default:
		writeJSON(w, http.StatusOK, fixtureIntake)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "malformed submission")
		return
	}
	if sub.AssessmentID == ExpiredAssessmentID {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	q := questionByID(sub.QID)
	if q == nil {
		writeError(w, http.StatusUnprocessableEntity, "unknown question "+sub.QID)
		return
	}
	if !validAnswer(q, sub.AID) {
		writeError(w, http.StatusUnprocessableEntity, "unknown option "+sub.AID)
		return
	}

	sess := s.session(sub.AssessmentID)

	s.mu.Lock()
	if q.IsMultiSelect() {
		sess.responses[sub.QID] = flow.MultiAnswer(scoring.SplitSelections(sub.AID))
	} else {
		sess.responses[sub.QID] = flow.SingleAnswer(sub.AID)
	}
	sess.deferred[sub.QID] = sub.IsDeferred
	sess.flagged[sub.QID] = sub.IsFlagged
	state, reason := s.resumptionState(sess)
	s.mu.Unlock()

	s.log.Info("submission recorded",
		"assessment", sub.AssessmentID,
		"question", sub.QID,
		"score", sub.Score,
		"origin", sub.Origin,
		"deferred", sub.IsDeferred,
		"flagged", sub.IsFlagged)

	reply := struct {
		flow.ResumptionState
		LogicReason string `json:"logic_reason,omitempty"`
	}{ResumptionState: *state, LogicReason: reason}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{
			responses: make(map[string]flow.AnswerValue),
			deferred:  make(map[string]bool),
			flagged:   make(map[string]bool),
		}
		s.sessions[id] = sess
	}
	return sess
}

// resumptionState derives the full resumption payload from the recorded
// answers. Caller holds s.mu.
func (s *Server) resumptionState(sess *session) (*flow.ResumptionState, string) {
	path, reason := reachablePath(sess)

	state := &flow.ResumptionState{
		Responses:     make(map[string]flow.AnswerValue, len(sess.responses)),
		ReachablePath: path,
	}
	for qid, v := range sess.responses {
		state.Responses[qid] = v
	}
	for qid, on := range sess.deferred {
		if on {
			state.DeferredIDs = append(state.DeferredIDs, qid)
		}
	}
	for qid, on := range sess.flagged {
		if on {
			state.FlaggedIDs = append(state.FlaggedIDs, qid)
		}
	}

	inPath := make(map[string]bool, len(path))
	for _, qid := range path {
		inPath[qid] = true
	}
	for _, q := range fixtureQuestions {
		status := flow.StatusHidden
		if inPath[q.ID] {
			status = flow.StatusUnlocked
		}
		state.Sidebar = append(state.Sidebar, flow.SidebarEntry{
			QID:    q.ID,
			Domain: q.Domain,
			Title:  q.Text,
			Status: status,
		})
	}

	for _, qid := range path {
		if _, answered := sess.responses[qid]; !answered || sess.deferred[qid] {
			state.NextBestQID = qid
			break
		}
	}
	return state, reason
}

// reachablePath implements the branching. Two branch points:
//
//   - GOV-3 joins the path once GOV-1 scores 3 or better (a formal
//     policy exists, so the metrics question is meaningful).
//   - AC-2 joins once AC-1 carries three or more selections.
//
// vendor-risk questions never join a base path.
func reachablePath(sess *session) ([]string, string) {
	path := []string{"GOV-1", "GOV-2"}
	var reason string

	if ans, ok := sess.responses["GOV-1"]; ok {
		q := questionByID("GOV-1")
		if scoring.OptionScore(q, ans.Single()) >= 3 {
			path = append(path, "GOV-3")
			reason = "formal policy in place: governance deep-dive unlocked"
		} else {
			reason = "no approved policy: governance deep-dive skipped"
		}
	}

	path = append(path, "AC-1")
	if ans, ok := sess.responses["AC-1"]; ok && len(ans.Selections) >= 3 {
		path = append(path, "AC-2")
		if reason == "" {
			reason = "broad control coverage: privileged-access follow-up unlocked"
		}
	}

	path = append(path, "OPS-1")
	return path, reason
}

func questionByID(qid string) *catalog.Question {
	for i := range fixtureQuestions {
		if fixtureQuestions[i].ID == qid {
			return &fixtureQuestions[i]
		}
	}
	return nil
}

// validAnswer accepts single option ids and, for multi-select questions,
// comma-joined selection lists.
func validAnswer(q *catalog.Question, aid string) bool {
	if q.IsMultiSelect() {
		selections := scoring.SplitSelections(aid)
		if len(selections) == 0 {
			return false
		}
		for _, id := range selections {
			if q.Option(id) == nil {
				return false
			}
		}
		return true
	}
	return q.Option(aid) != nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
