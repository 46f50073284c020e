package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pcrm/legacy-migrate/internal/logging"
	"github.com/pcrm/legacy-migrate/internal/orchestrator"
	"github.com/pcrm/legacy-migrate/internal/source"
)

type testConnectionRequest struct {
	ConnectionString string `json:"connectionString"`
}

type migrateRequest struct {
	ConnectionString string   `json:"connectionString"`
	Tables           []string `json:"tables"`
	BatchSize        int      `json:"batchSize"`
}

type syncRequest struct {
	ConnectionString  string     `json:"connectionString"`
	TableName         string     `json:"tableName"`
	LastSyncTimestamp *time.Time `json:"lastSyncTimestamp"`
}

type importRequest struct {
	SQL             string `json:"sql"`
	Filename        string `json:"filename"`
	BatchSize       int    `json:"batchSize"`
	ContinueOnError *bool  `json:"continueOnError"`
}

func params(connString string) source.ConnectionParams {
	return source.ConnectionParams{ConnString: connString}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// writeUpstreamError adds remediation hints when the legacy endpoint
// could not be reached. The error text from the driver is passed
// through; connection parameters never are.
func writeUpstreamError(w http.ResponseWriter, err error) {
	body := map[string]any{
		"success": false,
		"error":   err.Error(),
	}
	if strings.Contains(err.Error(), "connection strateg") {
		body["recommendations"] = orchestrator.ConnectionRecommendations
		writeJSON(w, http.StatusBadGateway, body)
		return
	}
	writeJSON(w, http.StatusInternalServerError, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<20))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req testConnectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ConnectionString == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("connectionString is required"))
		return
	}

	report, err := s.svc.TestConnection(r.Context(), params(req.ConnectionString))
	if err != nil {
		// Probe failures always carry the remediation hints.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success":         false,
			"error":           err.Error(),
			"recommendations": orchestrator.ConnectionRecommendations,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"database_version": report.DatabaseVersion,
		"table_count":      report.TableCount,
		"strategy":         report.Strategy,
	})
}

func (s *Server) handleMigrateData(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ConnectionString == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("connectionString is required"))
		return
	}

	results, err := s.svc.Migrate(r.Context(), params(req.ConnectionString), req.Tables, req.BatchSize)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	var failed int
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}
	msg := fmt.Sprintf("migrated %d of %d tables", len(results)-failed, len(results))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": failed == 0,
		"message": msg,
		"results": results,
	})
}

func (s *Server) handleSyncData(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ConnectionString == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("connectionString is required"))
		return
	}
	if req.TableName == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("tableName is required"))
		return
	}

	result, err := s.svc.Sync(r.Context(), params(req.ConnectionString), req.TableName, req.LastSyncTimestamp)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        fmt.Sprintf("synced %d rows of %s", result.RecordsSynced, result.Table),
		"records_synced": result.RecordsSynced,
		"data":           result.Data,
		"last_sync":      result.LastSync.Format(time.RFC3339),
	})
}

func (s *Server) handleImportSQL(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SQL == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("sql is required"))
		return
	}

	opts := orchestrator.ImportOptions{
		Filename:  req.Filename,
		BatchSize: req.BatchSize,
	}
	if req.ContinueOnError != nil {
		opts.ContinueOnError = *req.ContinueOnError
	}

	result, err := s.svc.Import(r.Context(), req.SQL, opts)
	if err != nil {
		// Partial results still tell the caller what was rejected or
		// applied before the failure.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"error":   err.Error(),
			"result":  result,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}

func (s *Server) handleMigrationStatus(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.MigrationStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tables":  records,
	})
}
