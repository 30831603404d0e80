package service

import (
	"regexp"
	"strings"
)

var (
	hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
	mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}_.]+)`)
)

// ExtractHashtags returns the lowercased, de-duplicated #tags in content,
// in order of first appearance.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var tags []string
	for _, match := range matches {
		tag := strings.ToLower(match[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	return tags
}

// ExtractMentions returns the lowercased, de-duplicated @usernames in
// content, in order of first appearance.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var mentions []string
	for _, match := range matches {
		username := strings.ToLower(match[1])
		if _, ok := seen[username]; ok {
			continue
		}
		seen[username] = struct{}{}
		mentions = append(mentions, username)
	}

	return mentions
}

// ReplyPrefill returns the compose-field prefill for replying to a comment
// author: the @mention followed by a single space. Comments stay a flat
// list; the mention is a text convention only.
func ReplyPrefill(username string) string {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return ""
	}

	return "@" + username + " "
}
