package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/analysis"
	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/types"
)

const missingAnalyzeFields = "Missing resume file, job description, or job title."

// Analysis outcome labels reported to metrics.
const (
	analysisOK          = "ok"
	analysisBadInput    = "bad_input"
	analysisModelError  = "model_error"
	analysisMergeFailed = "merge_failed"
)

// handleAnalyzeResume extracts the uploaded resume, scores it against the job
// and merges the extracted skills into the caller's profile.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.observeAnalysis(analysisBadInput)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Resume upload exceeds %d bytes.", s.maxUploadBytes))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, missingAnalyzeFields)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	jobTitle := strings.TrimSpace(r.FormValue("jobTitle"))
	jobDescription := strings.TrimSpace(r.FormValue("jobDescription"))
	file, header, err := r.FormFile("resume")
	if err != nil || jobTitle == "" || jobDescription == "" {
		s.observeAnalysis(analysisBadInput)
		s.errorResponse(w, http.StatusBadRequest, missingAnalyzeFields)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.observeAnalysis(analysisBadInput)
		s.errorResponse(w, http.StatusBadRequest, "Could not read the uploaded resume.")
		return
	}

	format := analysis.DetectFormat(header.Filename, header.Header.Get("Content-Type"), data)
	resumeText, err := analysis.ExtractText(format, data)
	if err != nil {
		s.observeAnalysis(analysisBadInput)
		s.logger.Info("resume extraction failed",
			zap.String("user_id", userID.String()),
			zap.String("format", string(format)),
			zap.Error(err))
		if errors.Is(err, analysis.ErrUnsupportedFormat) || errors.Is(err, analysis.ErrNoText) {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Could not extract text from the resume.")
		return
	}

	user, err := s.userService.GetUser(r.Context(), userID)
	if err != nil {
		s.failure(w, err)
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), analysis.Input{
		ResumeText:     resumeText,
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
	})
	if err != nil {
		s.observeAnalysis(analysisModelError)
		s.failure(w, err)
		return
	}

	profile, err := s.profiles.Merge(r.Context(), userID, user.Email, result.ExtractedSkills, result.ATSScore)
	if err != nil {
		s.observeAnalysis(analysisMergeFailed)
		s.failure(w, err)
		return
	}

	s.observeAnalysis(analysisOK)
	s.jsonResponse(w, http.StatusOK, types.AnalyzeResponse{
		Success:  true,
		Message:  "Resume analysis complete.",
		Analysis: result,
		Profile:  profile,
	})
}

func (s *Server) observeAnalysis(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveAnalysis(outcome)
	}
}
