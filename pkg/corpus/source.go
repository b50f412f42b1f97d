package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const fetchTimeout = 30 * time.Second

// Fetch loads a post corpus from a file path or an HTTP(S) URL. The payload
// is either a JSON array of posts or plain text with one post per line.
// Posts without IDs get one assigned.
func Fetch(input string) (posts []Post, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	posts, err = FetchWithContext(ctx, input)
	return posts, err
}

// FetchWithContext loads a post corpus with context.
func FetchWithContext(ctx context.Context, input string) (posts []Post, err error) {
	var raw []byte

	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		raw, err = fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch posts from URL: %s", input)
			return posts, err
		}
	} else {
		raw, err = fetchFromFile(input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch posts from file: %s", input)
			return posts, err
		}
	}

	posts, err = decodePosts(raw)
	if err != nil {
		err = errors.Wrapf(err, "decoding posts from %s", input)
		return posts, err
	}

	for i := range posts {
		if posts[i].ID == "" {
			posts[i].ID = uuid.NewString()
		}
	}

	return posts, err
}

// decodePosts accepts a JSON array of posts or falls back to one post per
// line of plain text.
func decodePosts(raw []byte) (posts []Post, err error) {
	if jsonErr := json.Unmarshal(raw, &posts); jsonErr == nil {
		if len(posts) == 0 {
			err = errors.New("posts array is empty")
		}
		return posts, err
	}

	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		posts = append(posts, Post{Text: line})
	}
	if scanErr := scanner.Err(); scanErr != nil {
		err = errors.Wrap(scanErr, "scanning post lines")
		return posts, err
	}

	if len(posts) == 0 {
		err = errors.New("no posts found")
	}
	return posts, err
}

// fetchFromFile reads the corpus payload from a file.
func fetchFromFile(path string) (raw []byte, err error) {
	raw, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return raw, err
	}

	if len(raw) == 0 {
		err = errors.New("file is empty")
		return raw, err
	}

	return raw, err
}

// fetchFromURL retrieves the corpus payload from a URL.
func fetchFromURL(ctx context.Context, urlStr string) (raw []byte, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return raw, err
	}

	req.Header.Set("User-Agent", "soulforge/1.0")
	req.Header.Set("Accept", "application/json, text/plain")

	client := &http.Client{
		Timeout: fetchTimeout,
	}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return raw, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return raw, err
	}

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return raw, err
	}

	if len(raw) == 0 {
		err = errors.New("fetched content is empty")
	}
	return raw, err
}
