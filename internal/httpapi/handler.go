package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// Handler wires the session registry to the mux router.
type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

type errorResponse struct {
	Error string `json:"error"`
}

type createSessionRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	s := h.registry.Create(req.Metadata)
	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: s.ID})
}

type nextQuestionResponse struct {
	Status   string            `json:"status"`
	Question *models.Question `json:"question,omitempty"`
}

// Next strips answer-bearing fields before serving a question, the same
// "drill question" stripping idiom the teacher applies to its own served
// questions before handing them to a client.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, err := h.registry.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	q, err := s.Next()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if q == nil {
		writeJSON(w, http.StatusOK, nextQuestionResponse{Status: "complete"})
		return
	}

	stripped := *q
	// 0 doubles as a valid option index, but correct_answer is
	// json:",omitempty" so the zeroed field still drops out of the response.
	stripped.CorrectAnswer = 0
	stripped.CorrectOrder = nil
	// Deep-copy before stripping: SortItems' backing array is shared with the
	// bank's immutable Question, so zeroing in place would corrupt it for
	// every other session and for this session's own pending question.
	stripped.SortItems = append([]models.CategorySortItem(nil), q.SortItems...)
	for i := range stripped.SortItems {
		stripped.SortItems[i].Category = ""
	}

	writeJSON(w, http.StatusOK, nextQuestionResponse{Status: "in_progress", Question: &stripped})
}

type submitAnswerRequest struct {
	QuestionID   string  `json:"question_id"`
	Answer       any     `json:"answer"`
	ResponseTime float64 `json:"response_time"`
}

type submitAnswerResponse struct {
	Correct      bool    `json:"correct"`
	ResponseTime float64 `json:"response_time"`
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, err := h.registry.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.Answer(req.QuestionID, req.Answer, req.ResponseTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, submitAnswerResponse{Correct: result.Correct, ResponseTime: result.ResponseTime})
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, err := h.registry.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	report := s.Report(r.Context())
	h.registry.persist(s, report)
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s, err := h.registry.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, s.Debug())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
