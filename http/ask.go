package http

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/fwojciec/chatgate"
	"github.com/fwojciec/chatgate/json"
	"github.com/pkg/errors"
	"github.com/rivo/uniseg"
)

// multipartMemory is how much of a multipart form is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// Response formats accepted in the format query parameter.
const (
	formatMarkdown = ""
	formatHTML     = "html"
	formatText     = "text"
)

// handleAskQuery serves GET /ask?session_id=...&q=...
func (s *Server) handleAskQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	question := q.Get("q")
	if question == "" {
		question = q.Get("question")
	}
	s.ask(w, r, chatgate.Request{
		SessionID: q.Get("session_id"),
		Question:  question,
	})
}

// handleAskBody serves POST /ask and POST /ask_with_image with either a
// JSON or a multipart body.
func (s *Server) handleAskBody(w http.ResponseWriter, r *http.Request) {
	if s.maxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestBytes)
	}

	var (
		req chatgate.Request
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		req, err = parseMultipart(r)
	case "application/json", "":
		req, err = json.DecodeAskRequest(r.Body)
	default:
		err = fmt.Errorf("unsupported content type %q: %w", mediaType, chatgate.ErrInvalidInput)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	s.ask(w, r, req)
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request, req chatgate.Request) {
	format := r.URL.Query().Get("format")
	if err := s.checkFormat(format); err != nil {
		fail(w, r, err)
		return
	}
	if s.maxQuestionLength > 0 {
		if n := uniseg.GraphemeClusterCount(req.Question); n > s.maxQuestionLength {
			fail(w, r, fmt.Errorf("question is %d characters, limit is %d: %w",
				n, s.maxQuestionLength, chatgate.ErrInvalidInput))
			return
		}
	}

	resp, err := s.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}

	var html string
	switch format {
	case formatHTML:
		html, err = s.renderer.HTML(resp.Text)
		if err != nil {
			fail(w, r, errors.Wrap(err, "render html"))
			return
		}
	case formatText:
		resp.Text = s.renderer.Plain(resp.Text)
	}

	data, err := json.MarshalResponse(*resp, html)
	if err != nil {
		fail(w, r, errors.Wrap(err, "encode response"))
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) checkFormat(format string) error {
	switch format {
	case formatMarkdown:
		return nil
	case formatHTML, formatText:
		if s.renderer == nil {
			return fmt.Errorf("format %q is not enabled: %w", format, chatgate.ErrInvalidInput)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q: %w", format, chatgate.ErrInvalidInput)
	}
}

// parseMultipart reads session_id, q (or question) and an optional image
// file from a multipart form.
func parseMultipart(r *http.Request) (chatgate.Request, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return chatgate.Request{}, err
		}
		return chatgate.Request{}, fmt.Errorf("parse form: %v: %w", err, chatgate.ErrInvalidInput)
	}
	defer r.MultipartForm.RemoveAll()

	question := r.FormValue("q")
	if question == "" {
		question = r.FormValue("question")
	}
	req := chatgate.Request{
		SessionID: r.FormValue("session_id"),
		Question:  question,
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return chatgate.Request{}, fmt.Errorf("read image: %v: %w", err, chatgate.ErrInvalidInput)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return chatgate.Request{}, fmt.Errorf("read image: %v: %w", err, chatgate.ErrInvalidInput)
	}
	req.Image = &chatgate.Image{
		Data:     data,
		MimeType: strings.TrimSpace(header.Header.Get("Content-Type")),
	}
	return req, nil
}
