// Package tags 负责标签的规范化、去重和筛选。
// 标签是自由输入的文本，存入帖子或临期食品前都要经过 Normalize。
package tags

import (
	"strings"

	"github.com/IamGODofNEWWORLD/MeShare/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllTag 是筛选时表示"不筛选"的哨兵值
const AllTag = "ALL"

// Normalize 去掉首尾空白并剥离一个前导 #。
// 结果为空字符串表示输入无效，调用方必须丢弃。
func Normalize(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, "#")
	return strings.TrimSpace(t)
}

// Append 规范化后把标签加入列表。已存在或规范化结果为空时原样返回（集合语义）。
func Append(list []string, raw string) []string {
	t := Normalize(raw)
	if t == "" {
		return list
	}
	for _, existing := range list {
		if existing == t {
			return list
		}
	}
	return append(list, t)
}

// Remove 按精确匹配移除标签，不存在时是空操作
func Remove(list []string, tag string) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// Dedupe 去重，保留首次出现的顺序
func Dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, t := range list {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// All 收集所有帖子的标签词表，去重后按日语排序规则排序，
// 供筛选栏展示时保持稳定可读的顺序
func All(posts []*model.Post) []string {
	var all []string
	for _, p := range posts {
		all = append(all, p.Tags...)
	}
	all = Dedupe(all)

	c := collate.New(language.Japanese)
	c.SortStrings(all)
	return all
}

// FilterByTag 返回标签集合包含 tag 的帖子，保持输入顺序不变。
// tag 为 AllTag 时返回全部帖子。
func FilterByTag(posts []*model.Post, tag string) []*model.Post {
	if tag == AllTag {
		return posts
	}
	out := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
