package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abelmak/chapterdesk/core/audit"
	"github.com/abelmak/chapterdesk/core/chapter"
	"github.com/abelmak/chapterdesk/core/export"
)

type chapterApi struct {
	svc      chapter.Service
	validate *validator.Validate
}

func registerChapterAPI(
	g *echo.Group,
	jwt, auditmw echo.MiddlewareFunc,
	svc chapter.Service,
	validate *validator.Validate,
) {
	api := chapterApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/chapters", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, adminMiddleware(), auditmw)
	cg.DELETE("", api.destroyMultiple, adminMiddleware(), auditmw)
	cg.GET("/tree", api.tree)
	cg.GET("/export", api.export, auditmw)
	cg.PATCH("/bulk", api.bulkUpdate, adminMiddleware(), auditmw)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, adminMiddleware(), auditmw)
	cg.DELETE("/:id", api.destroy, adminMiddleware(), auditmw)
	cg.GET("/:id/benchmark", api.benchmark)
	cg.GET("/:id/children", api.children)
}

func (api *chapterApi) create(ctx echo.Context) error {
	var data chapter.NewChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChapter")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	chp, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating chapter")
	}
	ctx.Set(auditObjectKey, chp.ID)
	return ctx.JSON(http.StatusCreated, chp)
}

func (api *chapterApi) query(ctx echo.Context) error {
	filter := new(chapter.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []chapter.Chapter{})
	}
	filter.Clean()

	chapters, err := api.svc.Query(filter)
	if err != nil {
		return errors.Wrap(err, "querying chapters")
	}
	if chapters == nil {
		chapters = []chapter.Chapter{}
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (api *chapterApi) tree(ctx echo.Context) error {
	tree, err := api.svc.Tree()
	if err != nil {
		return errors.Wrap(err, "building chapter tree")
	}
	return ctx.JSON(http.StatusOK, tree)
}

func (api *chapterApi) retrieve(ctx echo.Context) error {
	chp, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == chapter.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding chapter by ID")
	}
	return ctx.JSON(http.StatusOK, chp)
}

func (api *chapterApi) children(ctx echo.Context) error {
	chapters, err := api.svc.Children(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == chapter.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "querying chapter children")
	}
	if chapters == nil {
		chapters = []chapter.Chapter{}
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (api *chapterApi) benchmark(ctx echo.Context) error {
	bm, err := api.svc.Benchmark(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == chapter.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "benchmarking chapter")
	}
	return ctx.JSON(http.StatusOK, bm)
}

func (api *chapterApi) update(ctx echo.Context) error {
	chp, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == chapter.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding chapter by ID")
	}

	var data chapter.UpdateChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChapter")
	}
	if err := data.Validate(chp, api.validate, api.svc); err != nil {
		return err
	}

	chp, err = api.svc.Update(chp.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating chapter")
	}
	return ctx.JSON(http.StatusOK, chp)
}

func (api *chapterApi) bulkUpdate(ctx echo.Context) error {
	var data chapter.BulkPatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkPatch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.BulkUpdate(data)
	if err != nil {
		return errors.Wrap(err, "bulk-updating chapters")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *chapterApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		if errors.Cause(err) == chapter.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting chapter")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *chapterApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(query.IDs...); err != nil {
		return errors.Wrap(err, "deleting chapters")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *chapterApi) export(ctx echo.Context) error {
	var query ExportRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ExportRequest")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	filter := new(chapter.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	chapters, err := api.svc.Query(filter)
	if err != nil {
		return errors.Wrap(err, "querying chapters")
	}
	ds, err := chapter.ExportDataset(chapters, query.Fields)
	if err != nil {
		return err
	}

	ctx.Set(auditActionKey, audit.ActionExport)
	return writeExport(ctx, query.Format, ds)
}

type ExportRequest struct {
	Format string   `query:"format" validate:"omitempty,oneof=csv xlsx pdf"`
	Fields []string `query:"field"`
}

func (er *ExportRequest) Validate(validate *validator.Validate) error {
	if er.Format == "" {
		er.Format = export.FormatCSV
	}
	return validate.Struct(er)
}

// writeExport streams a dataset to the response in the requested format.
func writeExport(ctx echo.Context, format string, ds export.Dataset) error {
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, export.ContentType(format))
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.Filename(ds.Title, format)))
	res.WriteHeader(http.StatusOK)
	return export.Write(res, format, ds)
}
