package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/audit"
	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/member"
)

type memberApi struct {
	svc        member.Service
	chapterSvc chapter.Service
	validate   *validator.Validate
}

func registerMemberAPI(
	g *echo.Group,
	jwt, auditmw echo.MiddlewareFunc,
	svc member.Service,
	chapterSvc chapter.Service,
	validate *validator.Validate,
) {
	api := memberApi{
		svc:        svc,
		chapterSvc: chapterSvc,
		validate:   validate,
	}

	mg := g.Group("/members", jwt)
	mg.GET("", api.query)
	mg.POST("", api.create, auditmw)
	mg.DELETE("", api.destroyMultiple, adminMiddleware(), auditmw)
	mg.GET("/export", api.export, auditmw)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update, auditmw)
	mg.DELETE("/:id", api.destroy, auditmw)
}

func (api *memberApi) create(ctx echo.Context) error {
	var data member.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	mbr, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating member")
	}
	ctx.Set(auditObjectKey, mbr.ID)
	return ctx.JSON(http.StatusCreated, mbr)
}

func (api *memberApi) query(ctx echo.Context) error {
	filter := new(member.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []member.Member{})
	}
	filter.Clean()

	members, err := api.svc.Query(filter)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []member.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *memberApi) retrieve(ctx echo.Context) error {
	mbr, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == member.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding member by ID")
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *memberApi) update(ctx echo.Context) error {
	mbr, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == member.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding member by ID")
	}

	var data member.UpdateMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	if err := data.Validate(mbr, api.validate, api.svc); err != nil {
		return err
	}

	mbr, err = api.svc.Update(mbr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *memberApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == member.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *memberApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting members")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *memberApi) export(ctx echo.Context) error {
	var query ExportRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ExportRequest")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	filter := new(member.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	members, err := api.svc.Query(filter)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}

	chapterName := func(id string) (string, error) {
		chp, err := api.chapterSvc.GetByID(id)
		if err != nil {
			return "", err
		}
		return chp.Name, nil
	}
	ds, rowErrs, err := member.ExportDataset(members, query.Fields, chapterName)
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		ctx.Logger().Warnf("export row %d: %s", re.Index, re.Err)
	}

	ctx.Set(auditActionKey, audit.ActionExport)
	return writeExport(ctx, query.Format, ds)
}
