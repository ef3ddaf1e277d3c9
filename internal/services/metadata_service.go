// internal/services/metadata_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/patrickmn/go-cache"

	"github.com/javajoker/kpay-backend/internal/config"
)

// ErrMetadataUnavailable is returned when a metadata document cannot be
// fetched or is not a JSON object.
var ErrMetadataUnavailable = errors.New("metadata unavailable")

var errBlockedAddress = errors.New("address not allowed")

// MetadataService resolves NFT metadata URIs to JSON documents.
type MetadataService struct {
	s3Client   *s3.S3
	httpClient *http.Client
	cache      *cache.Cache
	gateway    string
	maxBytes   int64
	allowed    map[string]bool
}

func NewMetadataService(cfg *config.Config) (*MetadataService, error) {
	ttl := time.Duration(cfg.Metadata.CacheTTL) * time.Second
	s := &MetadataService{
		cache:    cache.New(ttl, 2*ttl),
		gateway:  strings.TrimSuffix(cfg.Metadata.IPFSGateway, "/") + "/",
		maxBytes: cfg.Metadata.MaxBytes,
		allowed:  make(map[string]bool),
	}
	for _, host := range cfg.Metadata.AllowedHosts {
		s.allowed[strings.ToLower(host)] = true
	}
	s.httpClient = &http.Client{
		Timeout: time.Duration(cfg.Metadata.FetchTimeout) * time.Second,
		Transport: &http.Transport{
			DialContext:         s.dialPublic,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	if s.maxBytes <= 0 {
		s.maxBytes = 1 << 20
	}

	if cfg.AWS.AccessKeyID == "" {
		// no S3 credentials: s3:// URIs are rejected
		return s, nil
	}

	awsCfg := &aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	}
	if cfg.AWS.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.AWS.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	s.s3Client = s3.New(sess)
	return s, nil
}

// Resolve fetches the JSON object behind uri. The raw document is cached by
// URI and decoded on every call, so callers own the returned map.
func (s *MetadataService) Resolve(ctx context.Context, uri string) (map[string]interface{}, error) {
	if cached, ok := s.cache.Get(uri); ok {
		return decodeDocument(cached.([]byte), uri)
	}

	body, err := s.fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	doc, err := decodeDocument(body, uri)
	if err != nil {
		return nil, err
	}
	s.cache.Set(uri, body, cache.DefaultExpiration)
	return doc, nil
}

func decodeDocument(body []byte, uri string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: document at %s is not a JSON object", ErrMetadataUnavailable, uri)
	}
	return doc, nil
}

func (s *MetadataService) fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fail(ErrInvalidArgument, "malformed metadata URI")
	}

	switch u.Scheme {
	case "ipfs":
		return s.fetchHTTP(ctx, s.gatewayURL(u))
	case "http", "https":
		return s.fetchHTTP(ctx, uri)
	case "s3":
		return s.fetchS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, fail(ErrInvalidArgument, fmt.Sprintf("unsupported metadata URI scheme %q", u.Scheme))
	}
}

// gatewayURL maps ipfs://<cid>/<path> (and the ipfs://ipfs/<cid> variant)
// onto the configured HTTP gateway.
func (s *MetadataService) gatewayURL(u *url.URL) string {
	path := strings.TrimPrefix(u.Host+u.Path, "ipfs/")
	return s.gateway + path
}

func (s *MetadataService) fetchHTTP(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, errBlockedAddress) {
			return nil, fail(ErrInvalidArgument, "metadata host not allowed")
		}
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrMetadataUnavailable, target, resp.StatusCode)
	}
	return s.readCapped(resp.Body)
}

// dialPublic resolves the host itself and connects only to public addresses,
// unless the host is allowlisted. Redirects go through the same dialer.
func (s *MetadataService) dialPublic(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if s.allowed[strings.ToLower(host)] {
		return dialer.DialContext(ctx, network, addr)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}
	for _, ip := range ips {
		if !publicIP(ip.IP) {
			return nil, fmt.Errorf("%w: %s resolves to %s", errBlockedAddress, host, ip.IP)
		}
	}
	return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].IP.String(), port))
}

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified() || ip.IsMulticast())
}

func (s *MetadataService) fetchS3(ctx context.Context, bucket, key string) ([]byte, error) {
	if s.s3Client == nil {
		return nil, fmt.Errorf("%w: S3 client not configured", ErrMetadataUnavailable)
	}

	out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get s3://%s/%s: %v", ErrMetadataUnavailable, bucket, key, err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: document size %d bytes exceeds maximum allowed size %d bytes", ErrMetadataUnavailable, *out.ContentLength, s.maxBytes)
	}
	return s.readCapped(out.Body)
}

func (s *MetadataService) readCapped(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("%w: document exceeds maximum allowed size %d bytes", ErrMetadataUnavailable, s.maxBytes)
	}
	return body, nil
}
