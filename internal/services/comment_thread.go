package services

import "github.com/anonto42/vortex/backend/internal/models"

// CommentNode is a comment with its direct replies.
type CommentNode struct {
	models.Comment
	Author  *models.UserCompact `json:"author,omitempty"`
	Replies []*CommentNode      `json:"replies"`
}

// BuildThread arranges a flat list of comments into a forest. A comment
// whose parent is not in the list, because it was deleted, becomes a root.
// Roots and each reply list keep the order of comments. authors may be nil.
func BuildThread(comments []models.Comment, authors map[string]models.UserCompact) []*CommentNode {
	nodes := make([]*CommentNode, 0, len(comments))
	index := make(map[string]*CommentNode, len(comments))
	for _, c := range comments {
		if _, dup := index[c.ID]; dup {
			continue
		}
		node := &CommentNode{Comment: c, Replies: []*CommentNode{}}
		if a, ok := authors[c.AuthorID]; ok {
			node.Author = &a
		}
		index[c.ID] = node
		nodes = append(nodes, node)
	}

	roots := make([]*CommentNode, 0, len(nodes))
	for _, node := range nodes {
		pid := node.ParentCommentID
		if pid == nil || *pid == node.ID {
			roots = append(roots, node)
			continue
		}
		parent, ok := index[*pid]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}
	return roots
}
