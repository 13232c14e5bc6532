package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alexanderramin/estimator/internal/domain"
	"github.com/alexanderramin/estimator/internal/estimate"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/gin-gonic/gin"
)

func (s *Server) listEstimates(c *gin.Context) {
	filter := repository.EstimateFilter{
		CustomerID: c.Query("customerId"),
		Status:     domain.EstimateStatus(c.Query("status")),
	}
	list, err := s.deps.Estimates.List(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]estimateResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEstimateResponse(e, s.deps.Currency))
	}
	c.JSON(http.StatusOK, gin.H{"estimates": out})
}

func (s *Server) createEstimate(c *gin.Context) {
	var req createEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	est := &domain.Estimate{Title: req.Title, CustomerID: req.CustomerID, Notes: req.Notes}
	if err := s.deps.Estimates.Create(c.Request.Context(), est); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEstimateResponse(est, s.deps.Currency))
}

func (s *Server) getEstimate(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshotResponse(sess.Snapshot(), s.deps.Currency))
}

func (s *Server) setStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	est, err := s.deps.Estimates.SetStatus(c.Request.Context(), c.Param("id"), domain.EstimateStatus(req.Status))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toEstimateResponse(est, s.deps.Currency))
}

func (s *Server) convert(c *gin.Context) {
	id := c.Param("id")
	job, err := s.deps.Jobs.ConvertFromEstimate(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	// The cached session still writes through; reopening makes it read-only.
	s.deps.Sessions.Drop(id)
	s.trackSessions()
	c.JSON(http.StatusCreated, jobResponse{
		ID:         job.ID,
		EstimateID: job.EstimateID,
		Title:      job.Title,
		Status:     string(job.Status),
		CreatedAt:  job.CreatedAt,
	})
}

// requireEditable stops edits to converted estimates before a session is
// touched.
func (s *Server) requireEditable(c *gin.Context) {
	est, err := s.deps.Estimates.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if est.IsLocked() {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": domain.ErrLocked.Error()})
		return
	}
	c.Next()
}

func (s *Server) addGroup(c *gin.Context) {
	var req addGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.dispatch(c, estimate.AddNode{
		Node:          &domain.GroupNode{Name: req.Name, EstimateID: c.Param("id")},
		ParentGroupID: req.ParentGroupID,
	})
}

func (s *Server) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	node := req.node()
	node.EstimateID = c.Param("id")
	s.dispatch(c, estimate.AddNode{Node: node, ParentGroupID: req.GroupID})
}

func (s *Server) patchGroup(c *gin.Context) {
	var req patchGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.dispatch(c, estimate.UpdateNode{Patch: domain.GroupPatch{
		ID:         c.Param("nodeId"),
		Name:       req.Name,
		OrderIndex: req.OrderIndex,
	}})
}

func (s *Server) patchItem(c *gin.Context) {
	var req patchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, ok := s.session(c)
	if !ok {
		return
	}
	patch := req.patch(c.Param("nodeId"))
	if it, found := estimate.FindItem(sess.Tree(), patch.ID); found &&
		it.Mode() == domain.ModeCatalog && patch.TouchesCatalogFields() {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error": "title, description and unit are read-only for catalog items",
		})
		return
	}
	s.apply(c, sess, estimate.UpdateNode{Patch: patch})
}

func (s *Server) move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	kind, _ := domain.ParseNodeKind(req.Kind)
	s.dispatch(c, estimate.MoveNode{
		Ref:           domain.NodeRef{Kind: kind, ID: req.NodeID},
		ParentGroupID: req.ParentGroupID,
		Index:         req.Index,
	})
}

func (s *Server) shift(c *gin.Context) {
	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	kind, _ := domain.ParseNodeKind(req.Kind)
	s.dispatch(c, estimate.ShiftNode{Ref: domain.NodeRef{Kind: kind, ID: req.NodeID}, Delta: req.Delta})
}

func (s *Server) deleteNode(c *gin.Context) {
	kind, ok := domain.ParseNodeKind(c.Param("kind"))
	if !ok {
		badRequest(c, errors.New("kind must be groups or items"))
		return
	}
	s.dispatch(c, estimate.DeleteNode{Ref: domain.NodeRef{Kind: kind, ID: c.Param("nodeId")}})
}

func (s *Server) undo(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	res := sess.Undo(c.Request.Context())
	s.deps.Metrics.RecordMutation("undo", res)
	s.respond(c, sess, res, http.StatusOK)
}

func (s *Server) dispatch(c *gin.Context, action estimate.Action) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	s.apply(c, sess, action)
}

func (s *Server) apply(c *gin.Context, sess *session.Session, action estimate.Action) {
	res := sess.Dispatch(c.Request.Context(), action)
	s.deps.Metrics.RecordMutation(action.Name(), res)
	applied := http.StatusOK
	if _, isAdd := action.(estimate.AddNode); isAdd {
		applied = http.StatusCreated
	}
	s.respond(c, sess, res, applied)
}

// respond reports Applied with the given status, NoOp as 200 with the
// unchanged tree and Rejected as 422. A change the store refused drops the
// cached session, so the next request reloads what was stored, and fails
// the request.
func (s *Server) respond(c *gin.Context, sess *session.Session, res estimate.Result, applied int) {
	if res.PersistErr != nil {
		s.deps.Sessions.Drop(c.Param("id"))
		s.trackSessions()
		s.fail(c, fmt.Errorf("change not saved: %w", res.PersistErr))
		return
	}
	body := snapshotResponse(sess.Snapshot(), s.deps.Currency)
	body.Outcome = string(res.Outcome)
	body.Reason = res.Reason
	if res.Node != nil {
		n := toNodeResponse(res.Node)
		body.Node = &n
	}
	status := http.StatusOK
	switch res.Outcome {
	case estimate.Applied:
		body.Changes = toChangeResponse(res.Changes)
		status = applied
	case estimate.Rejected:
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, body)
}

func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.deps.Sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	s.trackSessions()
	return sess, true
}

func (s *Server) trackSessions() {
	s.deps.Metrics.OpenSessions.Set(float64(s.deps.Sessions.Len()))
}
