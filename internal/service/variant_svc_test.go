package service

import (
	"strings"
	"testing"
)

// ==================== 变体键 ====================

func TestNewVariantKey_Canonical(t *testing.T) {
	key, err := NewVariantKey("1001", "CREATOR", "Heritage Brown", "M", 0, 2)
	if err != nil {
		t.Fatalf("构造变体键失败: %v", err)
	}

	want := "1001--CREATOR--Heritage Brown--M--0--2"
	if key.String() != want {
		t.Errorf("key = %s, want %s", key.String(), want)
	}
}

func TestNewVariantKey_Deterministic(t *testing.T) {
	// 相同输入必须产出相同的键，勾选状态靠它做 upsert
	a, _ := NewVariantKey("1001", "CREATOR", "Noir", "L", 1, 3)
	b, _ := NewVariantKey("1001", "CREATOR", "Noir", "L", 1, 3)
	if a.String() != b.String() {
		t.Errorf("相同输入产出不同键: %s != %s", a.String(), b.String())
	}
}

func TestNewVariantKey_Sentinels(t *testing.T) {
	key, err := NewVariantKey("1001", "MUG-01", "", "", 0, 0)
	if err != nil {
		t.Fatalf("构造变体键失败: %v", err)
	}
	if key.Color != NoColor {
		t.Errorf("color = %s, want %s", key.Color, NoColor)
	}
	if key.Size != NoSize {
		t.Errorf("size = %s, want %s", key.Size, NoSize)
	}
	if !strings.Contains(key.String(), "no-color--no-size") {
		t.Errorf("键未包含哨兵值: %s", key.String())
	}
}

func TestNewVariantKey_EmptySKU(t *testing.T) {
	if _, err := NewVariantKey("1001", "", "Noir", "M", 0, 0); err == nil {
		t.Error("空 SKU 应该报错")
	}
}

func TestNewVariantKey_DelimiterRejected(t *testing.T) {
	cases := []struct {
		name  string
		sku   string
		color string
	}{
		{"SKU 带分隔符", "CREA--TOR", "Noir"},
		{"颜色带分隔符", "CREATOR", "Bleu--Marine"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewVariantKey("1001", tc.sku, tc.color, "M", 0, 0); err == nil {
				t.Error("包含保留分隔符的组成部分应该被拒绝")
			}
		})
	}
}

func TestNewVariantKey_NegativeIndex(t *testing.T) {
	if _, err := NewVariantKey("1001", "CREATOR", "", "", -1, 0); err == nil {
		t.Error("负索引应该报错")
	}
	if _, err := NewVariantKey("1001", "CREATOR", "", "", 0, -1); err == nil {
		t.Error("负索引应该报错")
	}
}

// ==================== 颜色/尺码提取 ====================

func TestExtractColorSize_Options(t *testing.T) {
	color, size := ExtractColorSize([]SelectedOption{
		{Name: "Couleur", Value: "Bleu Marine"},
		{Name: "Taille", Value: "XL"},
	}, "")
	if color != "Bleu Marine" || size != "XL" {
		t.Errorf("got (%s, %s), want (Bleu Marine, XL)", color, size)
	}
}

func TestExtractColorSize_TitleFallback(t *testing.T) {
	cases := []struct {
		title     string
		wantColor string
		wantSize  string
	}{
		{"Terra Cotta / M", "Terra Cotta", "M"},
		{"Premium / Noir / L", "Noir", "L"},
		{"M", "", "M"},
		{"", "", ""},
	}
	for _, tc := range cases {
		color, size := ExtractColorSize(nil, tc.title)
		if color != tc.wantColor || size != tc.wantSize {
			t.Errorf("ExtractColorSize(%q) = (%s, %s), want (%s, %s)",
				tc.title, color, size, tc.wantColor, tc.wantSize)
		}
	}
}

func TestExtractColorSize_OptionsWinOverTitle(t *testing.T) {
	color, size := ExtractColorSize([]SelectedOption{
		{Name: "color", Value: "Rouge"},
		{Name: "size", Value: "S"},
	}, "Noir / XL")
	if color != "Rouge" || size != "S" {
		t.Errorf("显式选项应该优先于标题回退: got (%s, %s)", color, size)
	}
}

// ==================== 颜色规范化 ====================

func TestTransformColor(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Noir", "Black"},
		{"Terra Cotta", "Heritage Brown"},
		{"Bleu Marine", "French Navy"},
		{"Noir (Vintage)", "Black"},        // 括号后缀
		{"écru", "Ecru"},                   // 音调 + 大小写
		{"blanc casse", "Off White"},       // 去音调匹配
		{"Couleur Inconnue", "Couleur Inconnue"}, // 未知颜色透传
		{"", ""},
	}
	for _, tc := range cases {
		if got := TransformColor(tc.in); got != tc.want {
			t.Errorf("TransformColor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTransformColor_FoldedLookupDeterministic(t *testing.T) {
	// 第三步的宽松匹配走预构建的折叠表（按键排序构建），
	// 同一输入反复查询结果必须稳定
	for i := 0; i < 50; i++ {
		if got := TransformColor("gris chine"); got != "Heather Grey" {
			t.Fatalf("TransformColor(gris chine) = %s, want Heather Grey", got)
		}
		if got := TransformColor("ÉCRU"); got != "Ecru" {
			t.Fatalf("TransformColor(ÉCRU) = %s, want Ecru", got)
		}
	}
}

func TestReverseTransformColor_Deterministic(t *testing.T) {
	// Chocolat 和 Mocha 都正向映射到 Mocha；
	// 反向按键排序首键生效，结果必须稳定为 Chocolat
	for i := 0; i < 10; i++ {
		if got := ReverseTransformColor("Mocha"); got != "Chocolat" {
			t.Fatalf("ReverseTransformColor(Mocha) = %s, want Chocolat", got)
		}
	}
}

func TestReverseTransformColor_RoundTrip(t *testing.T) {
	// 一对一映射的颜色正反变换应该闭环
	cases := []string{"Noir", "Terra Cotta", "Bleu Marine", "Rose Pâle"}
	for _, fr := range cases {
		en := TransformColor(fr)
		if back := ReverseTransformColor(en); back != fr {
			t.Errorf("round trip %s -> %s -> %s", fr, en, back)
		}
	}
}

func TestReverseTransformColor_Passthrough(t *testing.T) {
	if got := ReverseTransformColor("Neon Green"); got != "Neon Green" {
		t.Errorf("无反向匹配应该透传: got %s", got)
	}
}
