package chats

import (
	"github.com/gin-gonic/gin"

	"promptforge/internal/interfaces/httpserver/handlers/chathandler"
	"promptforge/internal/interfaces/httpserver/handlers/prompthandler"
)

type ChatRoute struct {
	prompts *prompthandler.PromptHandler
	chats   *chathandler.ChatHandler
}

func NewChatRoute(prompts *prompthandler.PromptHandler, chats *chathandler.ChatHandler) *ChatRoute {
	return &ChatRoute{prompts: prompts, chats: chats}
}

func (r *ChatRoute) RegisterRouter(router gin.IRouter) {
	chatRouter := router.Group("/chats")
	chatRouter.POST("", r.chats.CreateChat)
	chatRouter.DELETE("/:prompt_id", r.prompts.PromptMiddleware(), r.chats.ClearChats)
}
