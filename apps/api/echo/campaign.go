package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/audit"
	"github.com/abelmak/chapterdesk/core/campaign"
)

type campaignApi struct {
	svc      campaign.Service
	validate *validator.Validate
}

func registerCampaignAPI(
	g *echo.Group,
	jwt, auditmw echo.MiddlewareFunc,
	svc campaign.Service,
	validate *validator.Validate,
) {
	api := campaignApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/campaigns", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, auditmw)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, auditmw)
	cg.DELETE("/:id", api.destroy, auditmw)
	cg.POST("/:id/send", api.send, auditmw)
}

func (api *campaignApi) create(ctx echo.Context) error {
	var data campaign.NewCampaign
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCampaign")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cmp, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating campaign")
	}
	ctx.Set(auditObjectKey, cmp.ID)
	return ctx.JSON(http.StatusCreated, cmp)
}

func (api *campaignApi) query(ctx echo.Context) error {
	campaigns, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying campaigns")
	}
	if campaigns == nil {
		campaigns = []campaign.Campaign{}
	}
	return ctx.JSON(http.StatusOK, campaigns)
}

func (api *campaignApi) retrieve(ctx echo.Context) error {
	cmp, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == campaign.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding campaign by ID")
	}
	return ctx.JSON(http.StatusOK, cmp)
}

func (api *campaignApi) update(ctx echo.Context) error {
	cmp, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == campaign.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding campaign by ID")
	}

	var data campaign.UpdateCampaign
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCampaign")
	}
	if err := data.Validate(cmp, api.validate); err != nil {
		return err
	}

	cmp, err = api.svc.Update(cmp.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating campaign")
	}
	return ctx.JSON(http.StatusOK, cmp)
}

func (api *campaignApi) send(ctx echo.Context) error {
	cmp, err := api.svc.Send(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == campaign.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}

	ctx.Set(auditActionKey, audit.ActionSend)
	return ctx.JSON(http.StatusOK, cmp)
}

func (api *campaignApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == campaign.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting campaign")
	}
	return ctx.NoContent(http.StatusNoContent)
}
