// Package link 维护帖子到临期食品的可选引用。
// 该引用只记录出处，不是强外键：解析失败时返回 nil，展示层按"无关联"处理。
package link

import (
	"fmt"

	"github.com/IamGODofNEWWORLD/MeShare/internal/model"
	"github.com/IamGODofNEWWORLD/MeShare/internal/tags"
)

// Resolve 按引用查找临期食品，找不到返回 nil
func Resolve(ref model.ExpiryRef, items []*model.ExpiryItem) *model.ExpiryItem {
	if ref.IsZero() {
		return nil
	}
	for _, item := range items {
		if ref.Matches(item.ID) {
			return item
		}
	}
	return nil
}

// MergeOnCreate 在创建帖子时合并关联食品的字段：
// 帖子未填期限时继承食品的保质期，标签取两者并集。
// 只在创建时执行一次，之后编辑食品不会回写已有帖子。
func MergeOnCreate(post *model.Post, linked *model.ExpiryItem) {
	if linked == nil {
		return
	}
	if post.Deadline == "" {
		post.Deadline = linked.ExpiryDate
	}
	post.Tags = tags.Dedupe(append(post.Tags, linked.Tags...))
}

// CascadeDelete 清空所有指向已删除食品的引用，其余字段和顺序不变。
// 返回引用被清空的帖子数量。
func CascadeDelete(id int64, posts []*model.Post) int {
	cleared := 0
	for _, p := range posts {
		if p.LinkedExpiryID.Matches(id) {
			p.LinkedExpiryID = ""
			cleared++
		}
	}
	return cleared
}

// LinkedCount 统计引用指定食品的帖子数量
func LinkedCount(id int64, posts []*model.Post) int {
	count := 0
	for _, p := range posts {
		if p.LinkedExpiryID.Matches(id) {
			count++
		}
	}
	return count
}

// DraftFromExpiryItem 根据临期食品生成预填的分享帖草稿。
// 纯转换，没有副作用，草稿经正常的发帖流程提交。
// 食品名也并入标签，方便按名称筛选。
func DraftFromExpiryItem(item *model.ExpiryItem) *model.Post {
	description := fmt.Sprintf("賞味期限: %s", item.ExpiryDate)
	if item.Quantity != "" {
		description += fmt.Sprintf(" / 量: %s", item.Quantity)
	}

	draftTags := tags.Dedupe(append(append([]string{}, item.Tags...), item.Name))

	return &model.Post{
		Type:           model.PostTypeOffer,
		Title:          item.Name + "あります",
		Description:    description,
		Deadline:       item.ExpiryDate,
		Tags:           draftTags,
		LinkedExpiryID: model.NewExpiryRef(item.ID),
	}
}
