package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impactproof/app"
)

const testConfigYAML = `
dataset:
  source: file
  path: ignored.csv
fields:
  record_id: learner_id
missing_labels:
  na_values: ["N/A"]
  no_values: ["No"]
  unknown_values: ["Unknown"]
checks:
  completeness:
    required_fields: [outcome]
    pass_threshold: 0.95
    warn_threshold: 0.85
output:
  path: outputs
`

const testCSV = `learner_id,outcome
L1,Completed
L2,Enrolled
L3,Completed
`

func multipartBody(t *testing.T, configYAML, csvData string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	cfgPart, err := mw.CreateFormFile("config", "impactproof.yaml")
	require.NoError(t, err)
	io.WriteString(cfgPart, configYAML)

	dataPart, err := mw.CreateFormFile("dataset", "data.csv")
	require.NoError(t, err)
	io.WriteString(dataPart, csvData)

	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func newTestServer() *Server {
	return NewServer(app.NewRunService(nil), nil)
}

func TestCreateRunReturnsScorecard(t *testing.T) {
	srv := newTestServer()
	body, contentType := multipartBody(t, testConfigYAML, testCSV)

	req := httptest.NewRequest(http.MethodPost, "/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result app.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "PASS", string(result.Scorecard.Overall))
}

func TestCreateRunConfigErrorIsUnprocessable(t *testing.T) {
	srv := newTestServer()
	badConfig := `
dataset:
  path: ignored.csv
fields:
  record_id: participant_id
checks:
  completeness:
    required_fields: [outcome]
    pass_threshold: 0.95
    warn_threshold: 0.85
`
	body, contentType := multipartBody(t, badConfig, testCSV)

	req := httptest.NewRequest(http.MethodPost, "/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code,
		"an unmapped role is a precondition failure, not a finding")
}

func TestGetRunAndReport(t *testing.T) {
	srv := newTestServer()
	body, contentType := multipartBody(t, testConfigYAML, testCSV)

	req := httptest.NewRequest(http.MethodPost, "/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result app.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	getReq := httptest.NewRequest(http.MethodGet, "/runs/"+result.RunID.String(), nil)
	getRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(getRec, getReq)
	assert.Equal(t, http.StatusOK, getRec.Code)

	repReq := httptest.NewRequest(http.MethodGet, "/runs/"+result.RunID.String()+"/report", nil)
	repRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(repRec, repReq)
	assert.Equal(t, http.StatusOK, repRec.Code)
	assert.Contains(t, repRec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, repRec.Body.String(), "Data Quality Scorecard")
}

func TestGetUnknownRun(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/runs/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
