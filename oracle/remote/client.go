package remote

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rapidroute/rapidroute-go/route"
	"github.com/tv42/httpunix"
)

// UnixScheme prefixes endpoints that name a unix socket, e.g. "unix:///run/rapidroute.sock".
const UnixScheme = "unix://"

const unixLocation = "oracle"

// Client is a route.Oracle that forwards each query to a remote server.
type Client struct {
	base string
	http *http.Client
}

var _ route.Oracle = (*Client)(nil)

// Dial returns a Client for the given endpoint, either an http(s) URL or a unix socket.
// No connection is made until the first query.
func Dial(endpoint string) (*Client, error) {
	if sock := strings.TrimPrefix(endpoint, UnixScheme); sock != endpoint {
		if sock == "" {
			return nil, errors.Wrapf(route.ErrInvalidInput, "endpoint %q has no socket path", endpoint)
		}
		tr := &httpunix.Transport{
			DialTimeout:           time.Second,
			RequestTimeout:        time.Minute,
			ResponseHeaderTimeout: time.Minute,
		}
		tr.RegisterLocation(unixLocation, sock)
		return &Client{
			base: httpunix.Scheme + "://" + unixLocation,
			http: &http.Client{Transport: tr},
		}, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(route.ErrInvalidInput, "endpoint %q: %v", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Wrapf(route.ErrInvalidInput, "endpoint %q: unsupported scheme", endpoint)
	}
	return &Client{
		base: strings.TrimSuffix(endpoint, "/"),
		http: &http.Client{},
	}, nil
}

func (c *Client) EnumeratePaths(src, snk route.NodeID, maxDepth int) ([]route.Path, error) {
	q := url.Values{}
	q.Set("src", string(src))
	q.Set("snk", string(snk))
	q.Set("max_depth", strconv.Itoa(maxDepth))

	var resp pathsResponse
	if err := c.do("GET", PathsRoute+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Paths, nil
}

func (c *Client) FanOut(node route.NodeID) ([]route.NodeID, error) {
	q := url.Values{}
	q.Set("node", string(node))

	var resp fanOutResponse
	if err := c.do("GET", FanOutRoute+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

func (c *Client) ResetTo(node route.NodeID) error {
	body, err := json.Marshal(resetRequest{Node: node})
	if err != nil {
		return err
	}
	return c.do("POST", ResetRoute, body, nil)
}

func (c *Client) do(method, path string, body []byte, out interface{}) error {
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "oracle %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errResp errorResponse
		json.NewDecoder(resp.Body).Decode(&errResp)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return errors.Wrap(route.ErrNodeNotFound, errResp.Error)
		case http.StatusBadRequest:
			return errors.Wrap(route.ErrInvalidInput, errResp.Error)
		default:
			return errors.Errorf("oracle %s %s: %s: %s", method, path, resp.Status, errResp.Error)
		}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
