package regbus

import (
	"math/big"
	"net/http"
	"strings"

	"github.com/lookbusy1344/bitcore/bits"
)

// CreateRegisterRequest is the body of POST /api/v1/regs.
type CreateRegisterRequest struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Initial string `json:"initial,omitempty"` // decimal or 0x-prefixed hex; default "0"
}

// AssignRequest is the body of POST /api/v1/regs/{name}/assign.
type AssignRequest struct {
	Value string `json:"value"`
}

// RegisterResponse describes one register's current (and, if scheduled,
// shadow) value.
type RegisterResponse struct {
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Hex     string `json:"hex"`
	Uint    string `json:"uint"`
	HasNext bool   `json:"hasNext"`
	NextHex string `json:"nextHex,omitempty"`
}

func parseBigValue(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, &strconvError{s}
	}
	return v, nil
}

type strconvError struct{ s string }

func (e *strconvError) Error() string { return "invalid integer literal: " + e.s }

// handleRegs handles POST (create) and GET (list) on /api/v1/regs.
func (s *Server) handleRegs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateReg(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"registers": s.registry.Names()})
	default:
		writeError(w, http.StatusMethodNotAllowed, "use GET or POST")
	}
}

func (s *Server) handleCreateReg(w http.ResponseWriter, r *http.Request) {
	var req CreateRegisterRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	initial, err := parseBigValue(req.Initial)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reg, err := s.registry.Create(req.Name, req.Width, initial)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, regToResponse(req.Name, reg))
}

// handleRegRoute dispatches /api/v1/regs/{name}[/assign|/flip].
func (s *Server) handleRegRoute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/regs/")
	parts := strings.SplitN(rest, "/", 2)
	name := parts[0]
	if name == "" {
		writeError(w, http.StatusNotFound, "register name required")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "use GET")
			return
		}
		s.handleGetReg(w, r, name)
		return
	}

	switch parts[1] {
	case "assign":
		s.handleAssign(w, r, name)
	case "flip":
		s.handleFlip(w, r, name)
	default:
		writeError(w, http.StatusNotFound, "unknown register route")
	}
}

func (s *Server) handleGetReg(w http.ResponseWriter, r *http.Request, name string) {
	reg, err := s.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, regToResponse(name, reg))
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	reg, err := s.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var req AssignRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	value, err := parseBigValue(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := bits.New(reg.Width(), value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := reg.Assign(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.broadcaster.Broadcast(BroadcastEvent{Type: EventAssign, Register: name, Hex: v.Hex()})
	writeJSON(w, http.StatusOK, regToResponse(name, reg))
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	reg, err := s.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err := reg.Flip(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.broadcaster.Broadcast(BroadcastEvent{Type: EventFlip, Register: name, Hex: reg.Current().Hex()})
	writeJSON(w, http.StatusOK, regToResponse(name, reg))
}

func regToResponse(name string, reg interface {
	Width() int
	Current() bits.Bits
	Next() (bits.Bits, bool)
}) RegisterResponse {
	cur := reg.Current()
	resp := RegisterResponse{
		Name:  name,
		Width: reg.Width(),
		Hex:   cur.Hex(),
		Uint:  cur.Uint().String(),
	}
	if next, ok := reg.Next(); ok {
		resp.HasNext = true
		resp.NextHex = next.Hex()
	}
	return resp
}
