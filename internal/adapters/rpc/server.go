package rpc

import (
	"bufio"
	"encoding/json"
	"net"
	"strconv"

	"github.com/lacewing-labs/taskd/internal/domain"
	"github.com/lacewing-labs/taskd/internal/ports"
	"github.com/lacewing-labs/taskd/pkg/log"
)

// Server dispatches decoded Requests into a ports.AdminAPI. Its
// HandleConn method is the func(net.Conn) handed to
// ports.EventManager.AddConnHandler (via Manager.SetConnHandler).
type Server struct {
	api    ports.AdminAPI
	logger log.Logger
}

// NewServer constructs a Server backed by api.
func NewServer(api ports.AdminAPI, logger log.Logger) *Server {
	return &Server{api: api, logger: logger}
}

// HandleConn reads exactly one line-delimited JSON request, dispatches
// it, writes exactly one JSON response line, and closes conn. Matches
// the source's synchronous request-per-connection rpc_dispatch model
// (SPEC_FULL.md §4.12).
func (s *Server) HandleConn(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		s.logger.Warn("rpc: failed to read request", log.Err(err))
		return
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeResponse(conn, Response{OK: false, Error: "malformed request: " + err.Error()})
		return
	}

	resp := s.dispatch(req)
	s.writeResponse(conn, resp)
}

func (s *Server) dispatch(req Request) Response {
	switch req.Op {
	case "load":
		if err := s.api.Load(req.Path, req.OverrideDisabled, req.ForceLoad); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "unload":
		if err := s.api.Unload(req.Label, req.ForceUnload); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "list":
		jobs, err := s.api.List()
		if err != nil {
			return errResponse(err)
		}
		return Response{OK: true, Jobs: toWire(jobs)}

	case "kill":
		signum, err := domain.ResolveSignal(req.Signal)
		if err != nil {
			return errResponse(err)
		}
		if err := s.api.Kill(req.Label, signum); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "enable":
		if err := s.api.Enable(req.Label, req.Enabled); err != nil {
			return errResponse(err)
		}
		return Response{OK: true}

	case "dump":
		dump, err := s.api.Dump(req.Label)
		if err != nil {
			return errResponse(err)
		}
		return Response{OK: true, Dump: dump}

	default:
		return Response{OK: false, Error: "unknown op: " + req.Op}
	}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("rpc: failed to marshal response", log.Err(err))
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("rpc: failed to write response", log.Err(err))
	}
}

func errResponse(err error) Response {
	return Response{OK: false, Error: err.Error()}
}

func toWire(jobs []ports.JobInfo) []jobInfoWire {
	out := make([]jobInfoWire, len(jobs))
	for i, j := range jobs {
		out[i] = jobInfoWire{
			Label:          j.Label,
			PID:            formatPID(j.PID),
			LastExitStatus: j.LastExitStatus,
			State:          j.State.String(),
		}
	}
	return out
}

// formatPID renders PID per spec §4.6/§6: "-" when the job has no live
// process (PID 0), otherwise the decimal PID.
func formatPID(pid int) string {
	if pid == 0 {
		return "-"
	}
	return strconv.Itoa(pid)
}
