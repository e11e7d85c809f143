package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anastat/domain/core"
	"anastat/domain/dataset"
	"anastat/domain/stats"
	"anastat/internal/errors"
	"anastat/ports"
)

// AnalyzeRequest is the JSON body for POST /v1/analyze. Datasets may be
// inline, referenced by library ID, or both; referenced datasets are
// appended after the inline ones.
type AnalyzeRequest struct {
	Datasets   [][]float64           `json:"datasets"`
	DatasetIDs []string              `json:"dataset_ids"`
	Options    stats.AnalysisOptions `json:"options"`
	Persist    bool                  `json:"persist"`
}

// PropagateRequest is the JSON body for POST /v1/propagate.
type PropagateRequest struct {
	Formula       string    `json:"formula"`
	Variables     []string  `json:"variables"`
	Values        []float64 `json:"values"`
	Uncertainties []float64 `json:"uncertainties"`
}

// DatasetRequest is the JSON body for dataset create/update.
type DatasetRequest struct {
	Name          string    `json:"name"`
	Values        []float64 `json:"values"`
	Uncertainties []float64 `json:"uncertainties"`
	Unit          string    `json:"unit"`
	Source        string    `json:"source"`
	Tags          []string  `json:"tags"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Options.ConfidenceLevel == 0 {
		defaults := stats.DefaultOptions()
		defaults.Enabled = req.Options.Enabled
		req.Options = defaults
	}

	data := req.Datasets
	var ids []core.DatasetID
	for _, raw := range req.DatasetIDs {
		id, err := core.ParseDatasetID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ds, err := s.datasets.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		data = append(data, ds.Values)
		ids = append(ids, id)
	}

	results, err := s.analysis.Analyze(c.Request.Context(), data, req.Options, ports.NopProgress{})
	if err != nil {
		writeError(c, err)
		return
	}

	if req.Persist && s.runs != nil {
		if err := s.runs.Save(c.Request.Context(), ids, req.Options, results); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) handlePropagate(c *gin.Context) {
	var req PropagateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	budget, err := s.propagation.Propagate(c.Request.Context(), req.Formula, req.Variables, req.Values, req.Uncertainties)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func (s *Server) handleCreateDataset(c *gin.Context) {
	var req DatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ds := dataset.New(req.Name, req.Values)
	ds.Uncertainties = req.Uncertainties
	ds.Unit = req.Unit
	ds.Source = req.Source
	ds.Tags = req.Tags

	if err := s.datasets.Create(c.Request.Context(), ds); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ds)
}

func (s *Server) handleListDatasets(c *gin.Context) {
	filter := dataset.SearchFilter{
		Query:      c.Query("q"),
		Tags:       c.QueryArray("tag"),
		PinnedOnly: c.Query("pinned") == "true",
	}

	list, err := s.datasets.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": list})
}

func (s *Server) handleGetDataset(c *gin.Context) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ds, err := s.datasets.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) handleUpdateDataset(c *gin.Context) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req DatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ds, err := s.datasets.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ds.Name = req.Name
	ds.Values = req.Values
	ds.Uncertainties = req.Uncertainties
	ds.Unit = req.Unit
	ds.Source = req.Source
	ds.Tags = req.Tags

	if err := s.datasets.Update(c.Request.Context(), ds); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) handleDeleteDataset(c *gin.Context) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.datasets.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePinDataset(c *gin.Context) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := s.datasets.SetPinned(c.Request.Context(), id, body.Pinned); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps application error codes onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeInsufficientData, errors.CodeUnsupportedConfig:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeNumericDegenerate:
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
