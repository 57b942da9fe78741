package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/geekshopping/platform/product"
)

// ProductAPIBasePath is where the catalog API mounts its routes.
const ProductAPIBasePath = "/api/product"

// ProductService is the typed client the front end uses to reach the catalog
// API. Every call attaches the caller's bearer token; the API rejects tokens
// without the geek_shopping scope.
type ProductService struct {
	baseURL string
	client  *http.Client
}

type ProductServiceOption func(*ProductService)

func NewProductService(baseURL string, opts ...ProductServiceOption) *ProductService {
	s := &ProductService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func WithProductHTTPClient(client *http.Client) ProductServiceOption {
	return func(s *ProductService) {
		if client != nil {
			s.client = client
		}
	}
}

func (s *ProductService) FindAll(ctx context.Context, token, category string) ([]*product.Product, error) {
	path := ProductAPIBasePath
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var records []*product.Product
	if err := s.do(ctx, http.MethodGet, path, token, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ProductService) FindByID(ctx context.Context, token string, id uuid.UUID) (*product.Product, error) {
	record := &product.Product{}
	if err := s.do(ctx, http.MethodGet, ProductAPIBasePath+"/"+id.String(), token, nil, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ProductService) Create(ctx context.Context, token string, record *product.Product) (*product.Product, error) {
	created := &product.Product{}
	if err := s.do(ctx, http.MethodPost, ProductAPIBasePath, token, record, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, token string, record *product.Product) (*product.Product, error) {
	updated := &product.Product{}
	path := ProductAPIBasePath + "/" + record.ID.String()
	if err := s.do(ctx, http.MethodPut, path, token, record, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, token string, id uuid.UUID) error {
	return s.do(ctx, http.MethodDelete, ProductAPIBasePath+"/"+id.String(), token, nil, nil)
}

func (s *ProductService) do(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request payload")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build catalog request")
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "catalog request failed")
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return err
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to decode catalog response")
	}

	return nil
}

func checkStatus(res *http.Response) error {
	if res.StatusCode < http.StatusBadRequest {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	msg := fmt.Sprintf("catalog API returned %d", res.StatusCode)

	err := goerrors.New(msg, categoryForStatus(res.StatusCode)).
		WithMetadata(map[string]any{
			"status": res.StatusCode,
			"body":   string(raw),
		})

	return err
}

func categoryForStatus(status int) goerrors.Category {
	switch status {
	case http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case http.StatusForbidden:
		return goerrors.CategoryAuthz
	case http.StatusNotFound:
		return goerrors.CategoryNotFound
	case http.StatusBadRequest:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryOperation
	}
}

// TokenResponse is the identity token endpoint success body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// IdentityService exchanges user credentials for an access token at the
// identity server, acting as the registered web client.
type IdentityService struct {
	baseURL      string
	clientID     string
	clientSecret string
	scopes       []string
	client       *http.Client
}

type IdentityServiceOption func(*IdentityService)

func NewIdentityService(baseURL, clientID, clientSecret string, scopes []string, opts ...IdentityServiceOption) *IdentityService {
	s := &IdentityService{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		scopes:       scopes,
		client:       &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

func WithIdentityHTTPClient(client *http.Client) IdentityServiceOption {
	return func(s *IdentityService) {
		if client != nil {
			s.client = client
		}
	}
}

// Login exchanges the user's credentials for a token carrying the web
// client's scopes.
func (s *IdentityService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("scope", strings.Join(s.scopes, " "))
	form.Set("username", username)
	form.Set("password", password)

	return s.token(ctx, form)
}

func (s *IdentityService) token(ctx context.Context, form url.Values) (*TokenResponse, error) {
	endpoint := s.baseURL + "/connect/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "token request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, goerrors.New("token request rejected", goerrors.CategoryAuth).
			WithMetadata(map[string]any{
				"status": res.StatusCode,
				"body":   string(raw),
			})
	}

	token := &TokenResponse{}
	if err := json.NewDecoder(res.Body).Decode(token); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to decode token response")
	}

	return token, nil
}
