package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ssargent/gridstore/pkg/export"
	"github.com/ssargent/gridstore/pkg/iric"
	"github.com/ssargent/gridstore/pkg/mesh"
	"github.com/ssargent/gridstore/pkg/metrics"
)

// Server serves one open case file read-only
type Server struct {
	reg     *iric.Registry
	fid     iric.FileID
	config  ServerConfig
	metrics *metrics.Metrics
}

// NewServer creates a viewer over the file fid of reg
func NewServer(reg *iric.Registry, fid iric.FileID, config ServerConfig, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.NewMetrics()
	}
	return &Server{
		reg:     reg,
		fid:     fid,
		config:  config,
		metrics: m,
	}
}

func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	return v, err == nil
}

// zoneParams reads {id} and, when step is true, {step}. It writes a 400 and
// returns false on a malformed value.
func zoneParams(w http.ResponseWriter, r *http.Request, step bool) (zid, s int, ok bool) {
	zid, ok = intParam(r, "id")
	if !ok {
		sendError(w, "zone id must be an integer", http.StatusBadRequest)
		return 0, 0, false
	}
	if !step {
		return zid, 0, true
	}
	s, ok = intParam(r, "step")
	if !ok {
		sendError(w, "step must be an integer", http.StatusBadRequest)
		return 0, 0, false
	}
	return zid, s, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ids, err := s.reg.ReadZoneIDs(s.fid)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	steps, err := s.reg.ReadSolCount(s.fid)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, HealthResponse{Status: "healthy", Zones: len(ids), Steps: steps})
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	infos, err := s.reg.ReadZoneInfos(s.fid)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, infos)
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	zid, _, ok := zoneParams(w, r, false)
	if !ok {
		return
	}
	info, err := s.reg.ReadZoneInfo(s.fid, zid)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, info)
}

func (s *Server) handleZoneSummary(w http.ResponseWriter, r *http.Request) {
	zid, _, ok := zoneParams(w, r, false)
	if !ok {
		return
	}
	var summary export.Summary
	err := s.reg.With(s.fid, func(f *mesh.File) error {
		z, err := f.Zone(zid)
		if err != nil {
			return err
		}
		summary, err = export.Summarize(z)
		return err
	})
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, summary)
}

func (s *Server) handleCoordinates(w http.ResponseWriter, r *http.Request) {
	zid, _, ok := zoneParams(w, r, false)
	if !ok {
		return
	}
	axis, err := mesh.ParseAxis(chi.URLParam(r, "axis"))
	if err != nil {
		sendMeshError(w, err)
		return
	}
	values, err := s.reg.ReadGridCoords(s.fid, zid, axis)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, CoordinatesResponse{Axis: axis.String(), Values: values})
}

func (s *Server) handleAttributeNames(w http.ResponseWriter, r *http.Request) {
	zid, _, ok := zoneParams(w, r, false)
	if !ok {
		return
	}
	d, err := mesh.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		sendMeshError(w, err)
		return
	}
	names, err := s.reg.ReadGridAttributeNames(s.fid, zid, d)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, names)
}

// handleAttribute returns a field as real values, falling back to integer
// values for integer fields
func (s *Server) handleAttribute(w http.ResponseWriter, r *http.Request) {
	zid, _, ok := zoneParams(w, r, false)
	if !ok {
		return
	}
	d, err := mesh.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		sendMeshError(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	resp := FieldResponse{Name: name, Domain: d.String()}

	resp.Real, err = s.reg.ReadGridReal(s.fid, zid, d, name)
	if errors.Is(err, mesh.ErrSizeMismatch) {
		resp.Integer, err = s.reg.ReadGridInteger(s.fid, zid, d, name)
	}
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, resp)
}

func (s *Server) handleSolutions(w http.ResponseWriter, r *http.Request) {
	times, err := s.reg.ReadSolTimes(s.fid)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	steps := make([]SolutionStep, len(times))
	for i, t := range times {
		steps[i] = SolutionStep{Step: i + 1, Time: t}
	}
	sendSuccess(w, steps)
}

func (s *Server) handleParticleGroups(w http.ResponseWriter, r *http.Request) {
	zid, step, ok := zoneParams(w, r, true)
	if !ok {
		return
	}
	names, err := s.reg.ReadSolParticleGroupImageGroupNames(s.fid, zid, step)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, names)
}

func (s *Server) handleParticleGroup(w http.ResponseWriter, r *http.Request) {
	zid, step, ok := zoneParams(w, r, true)
	if !ok {
		return
	}
	group := chi.URLParam(r, "group")
	pg, err := s.reg.ReadSolParticleGroupImagePos2d(s.fid, zid, step, group)
	if err != nil {
		sendMeshError(w, err)
		return
	}
	sendSuccess(w, ParticleGroupResponse{Group: group, Step: step, ParticleGroup: pg})
}
