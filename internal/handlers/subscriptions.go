package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/internal/dto"
	"vidtube/internal/response"
	"vidtube/internal/service"
)

type SubscriptionHandler struct {
	svc *service.SubscriptionService
}

func NewSubscriptionHandler(svc *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// Toggle godoc
// @Summary      Subscribe to or unsubscribe from a channel
// @Tags         subscriptions
// @Produce      json
// @Security     CookieAuth
// @Param        channelId  path      int  true  "Channel (user) ID"
// @Success      200  {object}  response.Success{data=dto.SubscriptionResponse}
// @Failure      400  {object}  response.Failure
// @Failure      404  {object}  response.Failure
// @Router       /subscriptions/c/{channelId} [post]
func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	channelID, ok := parseID(c, "channelId")
	if !ok {
		return
	}
	on, err := h.svc.Toggle(c.Request.Context(), u, channelID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	msg := "Unsubscribed successfully"
	if on {
		msg = "Subscribed successfully"
	}
	response.OK(c, http.StatusOK, msg, dto.SubscriptionResponse{ChannelID: channelID, Subscribed: on})
}
