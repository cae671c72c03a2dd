package logctx

import (
	"context"
	"smcp/internal/global"
)

// Append new tag to tag list (copy-on-write, parent context is never mutated)
func AppendCtxTag(ctx context.Context, newTag string) (newCtx context.Context) {
	old := GetTagList(ctx)
	tags := make([]string, 0, len(old)+1)
	tags = append(tags, old...)
	tags = append(tags, newTag)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Removes last index of tag list (copy-on-write)
func RemoveLastCtxTag(ctx context.Context) (newCtx context.Context) {
	old := GetTagList(ctx)
	if len(old) == 0 {
		newCtx = context.WithValue(ctx, global.LogTagsKey, []string{})
		return
	}

	tags := append([]string(nil), old[:len(old)-1]...)
	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Overwrites entire tag list with a copy of the given list
func OverwriteCtxTag(ctx context.Context, newList []string) (newCtx context.Context) {
	tags := append([]string(nil), newList...)
	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Extracts tag list from context or returns empty list
func GetTagList(ctx context.Context) (tags []string) {
	tags, ok := ctx.Value(global.LogTagsKey).([]string)
	if !ok {
		tags = []string{}
	}
	return
}
