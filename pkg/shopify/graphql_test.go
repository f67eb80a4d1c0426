package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ==================== GraphQL 客户端 ====================

func TestSetMetafields(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Shopify-Access-Token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"metafieldsSet":{"userErrors":[]}}}`))
	}))
	defer server.Close()

	client := NewGraphQLClient(server.URL, "test-token")
	inputs := []MetafieldInput{
		{
			OwnerGID:  VariantGID(777),
			Namespace: "custom",
			Key:       "print_file",
			Type:      "single_line_text_field",
			Value:     "creator-front.pdf",
		},
	}
	if err := client.SetMetafields(context.Background(), inputs); err != nil {
		t.Fatalf("写入元字段失败: %v", err)
	}

	var body struct {
		Query     string `json:"query"`
		Variables struct {
			Metafields []map[string]string `json:"metafields"`
		} `json:"variables"`
	}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("解析请求体失败: %v", err)
	}
	if !strings.Contains(body.Query, "metafieldsSet") {
		t.Errorf("query 未使用 metafieldsSet mutation: %s", body.Query)
	}
	if len(body.Variables.Metafields) != 1 {
		t.Fatalf("metafields 条数 = %d, want 1", len(body.Variables.Metafields))
	}
	mf := body.Variables.Metafields[0]
	if mf["ownerId"] != "gid://shopify/ProductVariant/777" {
		t.Errorf("ownerId = %q", mf["ownerId"])
	}
	if mf["namespace"] != "custom" || mf["key"] != "print_file" || mf["value"] != "creator-front.pdf" {
		t.Errorf("元字段内容不符: %+v", mf)
	}
}

func TestSetMetafields_UserErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"metafieldsSet":{"userErrors":[{"field":["metafields","0","value"],"message":"Value is invalid"}]}}}`))
	}))
	defer server.Close()

	client := NewGraphQLClient(server.URL, "test-token")
	err := client.SetMetafields(context.Background(), []MetafieldInput{
		{OwnerGID: VariantGID(1), Namespace: "custom", Key: "k", Type: "single_line_text_field", Value: ""},
	})
	if err == nil {
		t.Fatal("userErrors 应转成错误返回")
	}
	if !strings.Contains(err.Error(), "Value is invalid") {
		t.Errorf("错误文案未带上首个 userError: %v", err)
	}
}

func TestSetMetafields_GraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":[{"message":"Throttled"}]}`))
	}))
	defer server.Close()

	client := NewGraphQLClient(server.URL, "test-token")
	err := client.SetMetafields(context.Background(), []MetafieldInput{
		{OwnerGID: VariantGID(1), Namespace: "custom", Key: "k", Type: "single_line_text_field", Value: "v"},
	})
	if err == nil || !strings.Contains(err.Error(), "Throttled") {
		t.Errorf("顶层 errors 应转成错误返回, got %v", err)
	}
}
