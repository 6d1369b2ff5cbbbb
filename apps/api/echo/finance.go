package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core"
	"github.com/abelmak/chapterdesk/core/finance"
)

type financeApi struct {
	svc      finance.Service
	validate *validator.Validate
}

func registerFinanceAPI(
	g *echo.Group,
	jwt, auditmw echo.MiddlewareFunc,
	svc finance.Service,
	validate *validator.Validate,
) {
	api := financeApi{
		svc:      svc,
		validate: validate,
	}

	tg := g.Group("/transactions", jwt)
	tg.GET("", api.query)
	tg.POST("", api.record, auditmw)
	tg.GET("/summary", api.summary)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id/status", api.setStatus, adminMiddleware(), auditmw)
}

func (api *financeApi) record(ctx echo.Context) error {
	var data finance.NewTransaction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTransaction")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	txn, err := api.svc.Record(data)
	if err != nil {
		return errors.Wrap(err, "recording transaction")
	}
	ctx.Set(auditObjectKey, txn.ID)
	return ctx.JSON(http.StatusCreated, txn)
}

func (api *financeApi) query(ctx echo.Context) error {
	filter := new(finance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []finance.Transaction{})
	}

	txns, err := api.svc.Query(filter)
	if err != nil {
		return errors.Wrap(err, "querying transactions")
	}
	if txns == nil {
		txns = []finance.Transaction{}
	}
	return ctx.JSON(http.StatusOK, txns)
}

func (api *financeApi) retrieve(ctx echo.Context) error {
	txn, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == finance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding transaction by ID")
	}
	return ctx.JSON(http.StatusOK, txn)
}

func (api *financeApi) summary(ctx echo.Context) error {
	filter := new(finance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = new(finance.QueryFilter)
	}

	sum, err := api.svc.Summarize(filter)
	if err != nil {
		return errors.Wrap(err, "summarizing transactions")
	}
	return ctx.JSON(http.StatusOK, sum)
}

type SetTransactionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed refunded"`
}

func (sr *SetTransactionStatusRequest) Validate(validate *validator.Validate) error {
	sr.Status = core.CleanString(sr.Status, true /* lower */)
	return validate.Struct(sr)
}

func (api *financeApi) setStatus(ctx echo.Context) error {
	var data SetTransactionStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetTransactionStatusRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	txn, err := api.svc.SetStatus(ctx.Param("id"), data.Status)
	if err != nil {
		if errors.Cause(err) == finance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating transaction status")
	}
	return ctx.JSON(http.StatusOK, txn)
}
