package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"doc-chat-be/internal/dto"
	"doc-chat-be/internal/pkg/serverutils"
	"doc-chat-be/internal/service"
	"doc-chat-be/pkg/ingest"
)

// HeaderSessionID carries the caller's opaque session token. When absent the
// server mints one and echoes it back in the same header.
const HeaderSessionID = "X-Session-Id"

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Query(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("upload", c.Upload)
	h.Post("query", c.Query)
}

func (c *chatController) Upload(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Multipart form with files is required"))
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "At least one file is required"))
	}

	files := make([]ingest.File, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to open uploaded file"))
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read uploaded file"))
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: content})
	}

	sessionID := resolveSessionID(ctx)

	res, err := c.chatService.Upload(ctx.Context(), sessionID, files)
	if err != nil {
		return err // classified by the error middleware
	}

	ctx.Set(HeaderSessionID, sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Knowledge base is ready. Please ask questions.", res))
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	// A session id the store has never seen is not an error: it resolves to a
	// fresh fallback-capable session.
	sessionID := resolveSessionID(ctx)

	res, err := c.chatService.Query(ctx.Context(), sessionID, req.Query)
	if err != nil {
		return err
	}

	ctx.Set(HeaderSessionID, sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Answer generated", res))
}

func resolveSessionID(ctx *fiber.Ctx) string {
	if id := ctx.Get(HeaderSessionID); id != "" {
		return id
	}
	return uuid.New().String()
}
