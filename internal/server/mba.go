package server

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bqmba/internal/auth"
	"bqmba/internal/mba"
)

type CommandInfo struct {
	Name        string `json:"name" cbor:"name"`
	Code        string `json:"code" cbor:"code"`
	Access      string `json:"access" cbor:"access"`
	Format      string `json:"format" cbor:"format"`
	Data        string `json:"data,omitempty" cbor:"data,omitempty"`
	Description string `json:"description" cbor:"description"`
	Flags       string `json:"flags,omitempty" cbor:"flags,omitempty"`
}

type Flag struct {
	Index uint8  `json:"index" cbor:"index"`
	Label string `json:"label" cbor:"label"`
	Set   bool   `json:"set" cbor:"set"`
	Value string `json:"value" cbor:"value"`
}

// Report is the outcome of one POST /api/mba/{name}.
type Report struct {
	ID         string    `json:"id" cbor:"id"`
	Command    string    `json:"command" cbor:"command"`
	Address    string    `json:"address" cbor:"address"`
	OK         bool      `json:"ok" cbor:"ok"`
	Error      string    `json:"error,omitempty" cbor:"error,omitempty"`
	Declared   int       `json:"declared_length,omitempty" cbor:"declared_length,omitempty"`
	PayloadHex string    `json:"payload,omitempty" cbor:"-"`
	Payload    []byte    `json:"-" cbor:"payload,omitempty"`
	Flags      []Flag    `json:"flags,omitempty" cbor:"flags,omitempty"`
	Advisories []string  `json:"advisories,omitempty" cbor:"advisories,omitempty"`
	Output     string    `json:"output" cbor:"output"`
	Started    time.Time `json:"started" cbor:"started"`
}

func (s *Server) commandsHandler(w http.ResponseWriter, r *http.Request) {
	cat := s.runner.Catalog()
	out := make([]CommandInfo, 0, len(cat))
	for _, cmd := range cat {
		info := CommandInfo{
			Name:        cmd.Name,
			Code:        fmt.Sprintf("0x%04X", cmd.Code),
			Access:      cmd.Access.String(),
			Format:      cmd.Format.String(),
			Data:        hex.EncodeToString(cmd.Payload),
			Description: cmd.Description,
		}
		if cmd.Bits != nil {
			info.Flags = cmd.Bits.Name
		}
		out = append(out, info)
	}
	writeBody(w, r, http.StatusOK, out)
}

func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	cmd, ok := s.runner.Catalog().Lookup(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "Command not found: "+name)
		return
	}

	addr := s.addr
	if v := r.URL.Query().Get("addr"); v != "" {
		n, err := strconv.ParseUint(v, 0, 7)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid addr: "+v)
			return
		}
		addr = uint16(n)
	}

	if !cmd.Access.Readable() {
		if status, msg := s.authorizeWrite(r); status != http.StatusOK {
			writeError(w, r, status, msg)
			return
		}
	}

	rep := &Report{
		ID:      uuid.New().String(),
		Command: cmd.Name,
		Address: fmt.Sprintf("0x%02X", addr),
		Started: time.Now().UTC(),
	}
	var out bytes.Buffer
	res, err := s.runner.Execute(&out, addr, name)
	rep.Output = out.String()
	fillReport(rep, res)

	status := http.StatusOK
	if err != nil {
		rep.Error = err.Error()
		status = http.StatusBadGateway
		log.Printf("[mba] %s %s failed: %v", rep.ID, cmd.Name, err)
	} else {
		rep.OK = true
	}
	writeBody(w, r, status, rep)
}

func fillReport(rep *Report, res *mba.Result) {
	if res == nil {
		return
	}
	if rx := res.Reception; rx != nil {
		rep.Declared = rx.Declared
		for _, a := range rx.Advisories {
			rep.Advisories = append(rep.Advisories, a.String())
		}
	}
	if len(res.Payload) > 0 {
		rep.Payload = res.Payload
		rep.PayloadHex = hex.EncodeToString(res.Payload)
	}
	for _, b := range res.Bits {
		rep.Flags = append(rep.Flags, Flag{Index: b.Index, Label: b.Label, Set: b.Set, Value: b.Value()})
	}
}

func (s *Server) authorizeWrite(r *http.Request) (int, string) {
	if s.verifier == nil {
		return http.StatusForbidden, "write-only commands are disabled"
	}
	_, err := s.verifier.Authorize(r)
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "control scope required"
	default:
		return http.StatusUnauthorized, "authentication required"
	}
}
