package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"

	"mailvetter/internal/queue"
	"mailvetter/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadResponse reports the job a CSV upload was enqueued under.
type UploadResponse struct {
	JobID     string `json:"job_id"`
	TotalRows int    `json:"total_rows"`
	Message   string `json:"message"`
}

// uploadHandler accepts a CSV of one address per row (first column),
// creates a job row, and pushes one queue.Task per address so the
// worker pool can process the batch asynchronously. Grounded on
// mailvetter's cmd/api/upload.go for the multipart-form-to-CSV pipeline;
// it now enqueues a redis task per row instead of only creating the job
// row, since nothing previously consumed those rows.
func uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too large or malformed", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' parameter in form data", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	var emails []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, "Invalid CSV format", http.StatusBadRequest)
			return
		}
		if len(record) > 0 && record[0] != "" {
			emails = append(emails, record[0])
		}
	}

	if len(emails) == 0 {
		http.Error(w, "CSV is empty", http.StatusBadRequest)
		return
	}

	jobID := uuid.New().String()
	ctx := r.Context()

	if err := store.CreateJob(ctx, jobID, len(emails)); err != nil {
		logrus.Errorf("db error creating job: %v", err)
		http.Error(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	for _, email := range emails {
		if err := queue.Enqueue(ctx, queue.Task{JobID: jobID, Email: email}); err != nil {
			logrus.Errorf("failed to enqueue %s for job %s: %v", email, jobID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := UploadResponse{
		JobID:     jobID,
		TotalRows: len(emails),
		Message:   "Job created successfully. Processing started.",
	}
	json.NewEncoder(w).Encode(resp)
}
