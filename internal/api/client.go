package api

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

	"github.com/google/uuid"
)

// リモートAPIへの唯一の窓口。
// 全リクエストがここの do を通る。
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// エラーレスポンスのボディ。error優先、無ければmessage。
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do はHTTPリクエストを1回実行して out にJSONを読み込む。
//   - bodyがあるときだけ Content-Type を付ける
//   - headers は既定値より優先
//   - 204 はボディを読まずに成功
//   - 2xx以外は *APIError に正規化
//   - ネットワーク層の失敗はそのまま返す
func (c *Client) do(ctx context.Context, method string, path string, q url.Values, body interface{}, headers map[string]string, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	//呼び出し側のヘッダで上書き（bearerなど）
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return normalizeError(res)
	}

	if out == nil {
		//読み捨て（コネクション再利用のため）
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}

// 2xx以外を *APIError にする。
// body.error → body.message → "HTTP error! status: <code>" の順。
func normalizeError(res *http.Response) error {
	msg := fmt.Sprintf("HTTP error! status: %d", res.StatusCode)

	raw, err := io.ReadAll(res.Body)
	if err == nil && len(raw) > 0 {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			if eb.Error != "" {
				msg = eb.Error
			} else if eb.Message != "" {
				msg = eb.Message
			}
		}
	}

	return NewAPIError(res.StatusCode, msg)
}

// bearerヘッダを作る。tokenが空なら付けない。
func bearer(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// クエリ組み立て。空文字・ゼロ値は送らない。
func query(params map[string]string) url.Values {
	q := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		q.Set(k, v)
	}
	return q
}

// 疎通確認。GET /health。
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil, nil)
}
