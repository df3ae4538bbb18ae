package cutlist

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"otrpipe/internal/services"
)

// maxResponseBytes caps how much of a provider response is read. Cut list
// documents are a few KiB; the largest query responses stay well under this.
const maxResponseBytes = 8 << 20

var reSubmitID = regexp.MustCompile(`^ID=(\d+)`)

// Client is the HTTP collaborator for the cut-list provider.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient returns a Client for the provider at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// SetHTTPClient replaces the underlying HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(httpc *http.Client) {
	c.httpc = httpc
}

// Query asks the provider for the cut lists published for fileName. An empty
// response means nobody has published one yet; that returns no candidates and
// no error. Broken entries (unparsable ID or reported errors) are skipped.
func (c *Client) Query(ctx context.Context, fileName string) ([]Candidate, error) {
	body, err := c.get(ctx, "query", fmt.Sprintf("%s/getxml.php?name=%s", c.baseURL, url.QueryEscape(fileName)))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		c.logger.Debug("no cut lists published", "file", fileName)
		return nil, nil
	}

	var raw struct {
		Entries []struct {
			ID             string `xml:"id"`
			Rating         string `xml:"rating"`
			RatingByAuthor string `xml:"ratingbyauthor"`
			WithFrames     string `xml:"withframes"`
			Errors         string `xml:"errors"`
		} `xml:"cutlist"`
	}
	if err := xml.Unmarshal(body, &raw); err != nil {
		return nil, services.Wrap(services.ErrParse, "cutlist", "query",
			fmt.Sprintf("invalid candidate listing for %s", fileName), err)
	}

	var candidates []Candidate
	for _, entry := range raw.Entries {
		id, err := strconv.ParseInt(strings.TrimSpace(entry.ID), 10, 64)
		if err != nil {
			c.logger.Warn("skipping cut list with invalid id", "id", entry.ID)
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(entry.Errors)); err == nil && n > 0 {
			c.logger.Debug("skipping cut list with reported errors", "id", id, "errors", n)
			continue
		}
		candidates = append(candidates, Candidate{
			ID:         id,
			Rating:     parseRating(entry.Rating, entry.RatingByAuthor),
			WithFrames: strings.TrimSpace(entry.WithFrames) == "1",
		})
	}
	c.logger.Debug("cut list candidates", "file", fileName, "count", len(candidates))
	return candidates, nil
}

// parseRating reads the community rating, falling back to the author's own
// rating for lists nobody has rated yet.
func parseRating(rating, ratingByAuthor string) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(rating), 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(ratingByAuthor), 64); err == nil {
		return v
	}
	return 0
}

// Fetch downloads and parses the cut list with the given ID.
func (c *Client) Fetch(ctx context.Context, id int64) (List, error) {
	body, err := c.get(ctx, "fetch", fmt.Sprintf("%s/getfile.php?id=%d", c.baseURL, id))
	if err != nil {
		return List{}, err
	}
	if strings.TrimSpace(string(body)) == "Not found." {
		return List{}, services.Wrap(services.ErrNotFound, "cutlist", "fetch",
			fmt.Sprintf("cut list %d does not exist", id), nil)
	}
	list, err := Parse(body)
	if err != nil {
		return List{}, err
	}
	list.ID = id
	return list, nil
}

// Submit uploads a cut list document under the given access token and returns
// the ID the provider assigned to it.
func (c *Client) Submit(ctx context.Context, fileName string, document []byte, accessToken string) (int64, error) {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("userfile[]", fileName+".cutlist")
	if err != nil {
		return 0, services.Wrap(services.ErrNetwork, "cutlist", "submit", "building upload", err)
	}
	if _, err := part.Write(document); err != nil {
		return 0, services.Wrap(services.ErrNetwork, "cutlist", "submit", "building upload", err)
	}
	if err := writer.Close(); err != nil {
		return 0, services.Wrap(services.ErrNetwork, "cutlist", "submit", "building upload", err)
	}

	target := fmt.Sprintf("%s/%s/", c.baseURL, accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, &form)
	if err != nil {
		return 0, services.Wrap(services.ErrNetwork, "cutlist", "submit", "", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrNetwork, "cutlist", "submit", "provider unreachable", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, services.Wrap(services.ErrNetwork, "cutlist", "submit", "reading response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, services.Wrap(services.ErrNetwork, "cutlist", "submit",
			fmt.Sprintf("provider rejected upload: %s", strings.TrimSpace(string(body))), nil)
	}
	m := reSubmitID.FindSubmatch(body)
	if m == nil {
		return 0, services.Wrap(services.ErrParse, "cutlist", "submit",
			fmt.Sprintf("unexpected upload response: %s", strings.TrimSpace(string(body))), nil)
	}
	id, _ := strconv.ParseInt(string(m[1]), 10, 64)
	c.logger.Info("cut list submitted", "file", fileName, "id", id)
	return id, nil
}

func (c *Client) get(ctx context.Context, operation, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "cutlist", operation, "", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "cutlist", operation, "provider unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrNetwork, "cutlist", operation,
			fmt.Sprintf("provider returned %s", resp.Status), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, "cutlist", operation, "reading response", err)
	}
	return body, nil
}
