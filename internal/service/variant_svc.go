package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ==================== 变体键常量 ====================

const (
	// KeyDelimiter 变体键保留分隔符，任何组成部分不得包含它
	KeyDelimiter = "--"

	// NoColor / NoSize 缺省哨兵值
	NoColor = "no-color"
	NoSize  = "no-size"
)

// ==================== VariantKey 单件变体键 ====================

// VariantKey 单件勾选行的结构化复合键
// 对外持久化格式固定为 orderId--sku--color--size--productIndex--unitIndex，
// 该格式是勾选状态与订单内容唯一的 join key，必须保持稳定；
// 结构化表示 + 组成部分校验用来挡住分隔符污染
type VariantKey struct {
	OrderID      string
	SKU          string
	Color        string
	Size         string
	ProductIndex int
	UnitIndex    int
}

// NewVariantKey 构造变体键
// orderID 和 sku 非空是硬前置条件；color/size 缺省时落到哨兵值
func NewVariantKey(orderID, sku, color, size string, productIndex, unitIndex int) (VariantKey, error) {
	if orderID == "" {
		return VariantKey{}, fmt.Errorf("orderID 不能为空")
	}
	if sku == "" {
		return VariantKey{}, fmt.Errorf("SKU 不能为空 (SKU cannot be empty)")
	}
	if color == "" {
		color = NoColor
	}
	if size == "" {
		size = NoSize
	}
	if productIndex < 0 || unitIndex < 0 {
		return VariantKey{}, fmt.Errorf("索引不能为负: productIndex=%d unitIndex=%d", productIndex, unitIndex)
	}

	// 分隔符校验：组成部分里出现 -- 会污染 join key
	for _, part := range []string{orderID, sku, color, size} {
		if strings.Contains(part, KeyDelimiter) {
			return VariantKey{}, fmt.Errorf("键组成部分包含保留分隔符 %q: %q", KeyDelimiter, part)
		}
	}

	return VariantKey{
		OrderID:      orderID,
		SKU:          sku,
		Color:        color,
		Size:         size,
		ProductIndex: productIndex,
		UnitIndex:    unitIndex,
	}, nil
}

// String 规范持久化格式
// 相同输入永远产出相同的键（幂等），勾选状态靠它做 upsert
func (k VariantKey) String() string {
	return strings.Join([]string{
		k.OrderID,
		k.SKU,
		k.Color,
		k.Size,
		strconv.Itoa(k.ProductIndex),
		strconv.Itoa(k.UnitIndex),
	}, KeyDelimiter)
}

// GenerateVariantID 生成变体键字符串（纯函数，无副作用）
func GenerateVariantID(orderID, sku, color, size string, productIndex, unitIndex int) (string, error) {
	key, err := NewVariantKey(orderID, sku, color, size, productIndex, unitIndex)
	if err != nil {
		return "", err
	}
	return key.String(), nil
}

// ==================== 颜色/尺码提取 ====================

// SelectedOption 平台侧显式选项
type SelectedOption struct {
	Name  string
	Value string
}

// ExtractColorSize 从订单行提取颜色与尺码
// 优先级：(a) 名为 couleur/color 或 taille/size 的显式选项；
// (b) 斜杠分隔变体标题的位置回退——最后一段是尺码，倒数第二段是颜色
// （兼容带额外描述段的 N 段标题）
func ExtractColorSize(options []SelectedOption, variantTitle string) (color, size string) {
	for _, opt := range options {
		switch strings.ToLower(strings.TrimSpace(opt.Name)) {
		case "couleur", "color":
			if color == "" {
				color = strings.TrimSpace(opt.Value)
			}
		case "taille", "size":
			if size == "" {
				size = strings.TrimSpace(opt.Value)
			}
		}
	}
	if color != "" && size != "" {
		return color, size
	}

	// 位置回退
	parts := splitVariantTitle(variantTitle)
	n := len(parts)
	if n == 0 {
		return color, size
	}
	if size == "" {
		size = parts[n-1]
	}
	if color == "" && n >= 2 {
		color = parts[n-2]
	}
	return color, size
}

// splitVariantTitle 按斜杠切分并去掉空段
func splitVariantTitle(title string) []string {
	raw := strings.Split(title, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// ==================== 颜色规范化 ====================

// colorMappings 法语原始颜色名 -> 英语规范名
// 正向是多对一的（Chocolat 和 Mocha 都映射到 Mocha），
// 反向查找按键排序后首键生效，所以 Mocha 的反向结果是 Chocolat
var colorMappings = map[string]string{
	"Noir":           "Black",
	"Blanc":          "White",
	"Blanc Cassé":    "Off White",
	"Écru":           "Ecru",
	"Crème":          "Cream",
	"Beige":          "Beige",
	"Sable":          "Sand",
	"Taupe":          "Taupe",
	"Gris Chiné":     "Heather Grey",
	"Gris Foncé":     "Dark Heather Grey",
	"Anthracite":     "Charcoal",
	"Bleu Marine":    "French Navy",
	"Bleu Ciel":      "Sky Blue",
	"Bleu Canard":    "Teal",
	"Bleu Roi":       "Royal Blue",
	"Rouge":          "Red",
	"Bordeaux":       "Burgundy",
	"Vert Bouteille": "Bottle Green",
	"Vert Forêt":     "Glazed Green",
	"Kaki":           "Khaki",
	"Jaune Moutarde": "Spectra Yellow",
	"Orange Brûlée":  "Burnt Orange",
	"Terra Cotta":    "Heritage Brown",
	"Chocolat":       "Mocha",
	"Mocha":          "Mocha",
	"Violet":         "Purple",
	"Lavande":        "Lavender",
	"Rose Pâle":      "Cotton Pink",
	"Rose":           "Pink",
}

// reverseColorMappings 英语规范名 -> 法语原始键（仅用于旧文案重渲染）
var reverseColorMappings = buildReverseColorMappings()

// foldedColorMappings 去音调小写键 -> 英语规范名，给第三步宽松匹配用
// 按键排序构建、首键生效：两个键折叠后冲突时结果依然确定
var foldedColorMappings = buildFoldedColorMappings()

func buildFoldedColorMappings() map[string]string {
	keys := make([]string, 0, len(colorMappings))
	for k := range colorMappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]string, len(keys))
	for _, k := range keys {
		fk := foldDiacritics(k)
		if _, ok := folded[fk]; !ok {
			folded[fk] = colorMappings[k]
		}
	}
	return folded
}

// buildReverseColorMappings 构建反向表
// 按键排序遍历、首键生效，保证多对一时结果确定
func buildReverseColorMappings() map[string]string {
	keys := make([]string, 0, len(colorMappings))
	for k := range colorMappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reverse := make(map[string]string, len(keys))
	for _, k := range keys {
		v := colorMappings[k]
		if _, ok := reverse[v]; !ok {
			reverse[v] = k
		}
	}
	return reverse
}

// TransformColor 颜色规范化
// 查找顺序：精确匹配 -> 去掉括号后缀重试 -> 忽略音调符号和大小写重试；
// 全部失败时返回清理后的原始输入。总函数，永不报错
func TransformColor(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	// 1. 精确匹配（区分大小写）
	if mapped, ok := colorMappings[raw]; ok {
		return mapped
	}

	// 2. 去掉括号后缀重试，如 "Noir (Vintage)" -> "Noir"
	cleaned := stripParenthetical(raw)
	if mapped, ok := colorMappings[cleaned]; ok {
		return mapped
	}

	// 3. 忽略音调和大小写重试
	if mapped, ok := foldedColorMappings[foldDiacritics(cleaned)]; ok {
		return mapped
	}

	// 未知颜色优雅降级为清理后的输入
	return cleaned
}

// ReverseTransformColor 英语规范名映射回法语键
// 无反向匹配时原样透传
func ReverseTransformColor(english string) string {
	if source, ok := reverseColorMappings[strings.TrimSpace(english)]; ok {
		return source
	}
	return english
}

// stripParenthetical 去掉末尾括号段并裁剪空白
func stripParenthetical(s string) string {
	if idx := strings.Index(s, "("); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// foldDiacritics 去音调 + 小写，用于宽松比较
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
