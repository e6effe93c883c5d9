// Package view 根据权威状态计算只读投影，每次展示时全量重算，从不修改状态。
package view

import (
	"sort"
	"time"

	"github.com/IamGODofNEWWORLD/MeShare/internal/link"
	"github.com/IamGODofNEWWORLD/MeShare/internal/model"
	"github.com/IamGODofNEWWORLD/MeShare/internal/util"
)

// UrgencyBand 临期紧急程度，驱动颜色分级
type UrgencyBand string

const (
	BandExpired  UrgencyBand = "expired"  // 已过期
	BandCritical UrgencyBand = "critical" // 剩 0-2 天
	BandWarning  UrgencyBand = "warning"  // 剩 3-5 天
	BandOK       UrgencyBand = "ok"
)

// DaysUntilExpiry 计算距保质期还有几天。负数表示已过期，0 表示今天到期。
// 两个日期都按整天计算，忽略时分秒，避免跨时刻的进位误差。
// 日期无法解析时返回 false。
func DaysUntilExpiry(expiryDate string, today time.Time) (int, bool) {
	expiry, err := time.Parse(util.DateLayout, expiryDate)
	if err != nil {
		return 0, false
	}
	// 统一折算到 UTC 零点再求差，夏令时不会造成差值不是整天
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(e.Sub(t).Hours() / 24)
	return days, true
}

// Urgency 把剩余天数映射到紧急程度
func Urgency(days int) UrgencyBand {
	switch {
	case days < 0:
		return BandExpired
	case days <= 2:
		return BandCritical
	case days <= 5:
		return BandWarning
	default:
		return BandOK
	}
}

// SuggestShare 是否提示把该食品转成分享帖（剩 0-3 天时提示）
func SuggestShare(days int) bool {
	return days >= 0 && days <= 3
}

// Leaderboard 按感谢数降序取前 n 个帖子。
// 稳定排序：感谢数相同的帖子保持输入顺序。
func Leaderboard(posts []*model.Post, n int) []*model.Post {
	ranked := append(make([]*model.Post, 0, len(posts)), posts...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Thanks > ranked[j].Thanks
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Aggregate 计算掲示板聚合统计
func Aggregate(posts []*model.Post, comments model.CommentMap) model.BoardStats {
	stats := model.BoardStats{TotalPosts: len(posts)}
	for _, p := range posts {
		if p.Status == model.PostStatusResolved {
			stats.ResolvedCount++
		}
		stats.TotalThanks += p.Thanks
		switch p.Type {
		case model.PostTypeOffer:
			stats.OfferCount++
		case model.PostTypeRequest:
			stats.RequestCount++
		}
	}
	for _, list := range comments {
		stats.TotalComments += len(list)
	}
	return stats
}

// SortedByExpiry 按保质期升序排列，无法解析的日期排在最后
func SortedByExpiry(items []*model.ExpiryItem) []*model.ExpiryItem {
	sorted := append(make([]*model.ExpiryItem, 0, len(items)), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aerr := time.Parse(util.DateLayout, sorted[i].ExpiryDate)
		b, berr := time.Parse(util.DateLayout, sorted[j].ExpiryDate)
		if aerr != nil {
			return false
		}
		if berr != nil {
			return true
		}
		return a.Before(b)
	})
	return sorted
}

// ExpiryOverview 是临期页展示的一行：食品加上派生字段
type ExpiryOverview struct {
	*model.ExpiryItem
	DaysLeft     int         `json:"daysLeft"`
	Band         UrgencyBand `json:"band"`
	LinkedPosts  int         `json:"linkedPosts"`
	SuggestShare bool        `json:"suggestShare"`
}

// BuildExpiryOverview 组装临期页投影，按保质期升序
func BuildExpiryOverview(items []*model.ExpiryItem, posts []*model.Post, today time.Time) []*ExpiryOverview {
	sorted := SortedByExpiry(items)
	out := make([]*ExpiryOverview, 0, len(sorted))
	for _, it := range sorted {
		days, ok := DaysUntilExpiry(it.ExpiryDate, today)
		if !ok {
			// 日期损坏的条目按已过期处理
			days = -1
		}
		out = append(out, &ExpiryOverview{
			ExpiryItem:   it,
			DaysLeft:     days,
			Band:         Urgency(days),
			LinkedPosts:  link.LinkedCount(it.ID, posts),
			SuggestShare: SuggestShare(days),
		})
	}
	return out
}
