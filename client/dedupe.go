package client

import "messenger-api/dto/res"

// DedupeMessages keeps the first occurrence of every message id and the
// original order. Live pushes and a refetch can both deliver a message.
func DedupeMessages(messages []res.MessageResponse) []res.MessageResponse {
	seen := make(map[string]struct{}, len(messages))
	out := make([]res.MessageResponse, 0, len(messages))
	for _, message := range messages {
		if _, ok := seen[message.ID]; ok {
			continue
		}
		seen[message.ID] = struct{}{}
		out = append(out, message)
	}
	return out
}
