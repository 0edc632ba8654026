package usecase

import (
	"messenger-api/dto/res"
	"messenger-api/entity"
)

func toUserResponse(user *entity.User) res.UserResponse {
	return res.UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Bio:        user.Bio,
		Avatar:     user.Avatar,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt.Format(res.TimeFormat),
	}
}

func toMessageResponse(message *entity.Message) res.MessageResponse {
	reactions := make([]res.ReactionResponse, 0, len(message.Reactions))
	for _, reaction := range message.Reactions {
		reactions = append(reactions, res.ReactionResponse{Emoji: reaction.Emoji, UserID: reaction.UserID})
	}

	response := res.MessageResponse{
		ID:         message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Text:       message.Text,
		Image:      message.Image,
		Status:     string(message.Status),
		Reactions:  reactions,
		CreatedAt:  message.CreatedAt.Format(res.TimeFormat),
		UpdatedAt:  message.UpdatedAt.Format(res.TimeFormat),
	}
	if message.ReadAt != nil {
		response.ReadAt = message.ReadAt.Format(res.TimeFormat)
	}
	return response
}
