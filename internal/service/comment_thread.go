package service

import "github.com/spec-kit/helpdesk-service/internal/domain"

// BuildThread arranges comments, given in ascending creation order, into
// reply trees. A comment whose parent is absent becomes a root. Order is
// preserved at every level. Nodes on a parent cycle are unreachable from
// any root and are left out.
func BuildThread(comments []domain.Comment) []*domain.CommentNode {
	index := make(map[string]*domain.CommentNode, len(comments))
	nodes := make([]*domain.CommentNode, len(comments))
	for i := range comments {
		node := &domain.CommentNode{Comment: comments[i], Replies: []*domain.CommentNode{}}
		nodes[i] = node
		index[node.ID] = node
	}

	roots := []*domain.CommentNode{}
	for _, node := range nodes {
		if node.ParentID != nil {
			if parent, ok := index[*node.ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// CountThread returns the number of nodes across every level of roots.
func CountThread(roots []*domain.CommentNode) int {
	total := 0
	for _, node := range roots {
		total += 1 + CountThread(node.Replies)
	}
	return total
}
