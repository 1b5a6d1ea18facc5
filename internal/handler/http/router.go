package http

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
	LogOutput      io.Writer // default: os.Stdout

	// ArtifactDir is served read-only under /files so share links resolve.
	// Empty disables it.
	ArtifactDir string
}

type Handlers struct {
	Payroll      PayrollHandler
	Employee     EmployeeHandler
	Attendance   AttendanceHandler
	Notification NotificationHandler
	Report       ReportHandler
	Audit        AuditHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := Logger(opts)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/heartbeat"))

	if opts.ArtifactDir != "" {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(opts.ArtifactDir)))
		r.Get("/files/*", func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/salaries", func(r chi.Router) {
					r.Get("/", h.Payroll.QuerySalaries)
					r.Get("/exists", h.Payroll.SalaryExists)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Payroll.GetSalary)
						r.Get("/pdf", h.Report.SalaryPDF)

						r.Group(func(r chi.Router) {
							r.Use(middleware.RequirePayrollWriter)
							r.Delete("/", h.Payroll.DeleteSalary)
							r.Post("/notify", h.Notification.Dispatch)
						})
					})

					r.With(middleware.RequirePayrollWriter).Put("/", h.Payroll.UpsertSalary)
				})

				r.Post("/compute", h.Payroll.ComputeSingle)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePayrollWriter)
					r.Post("/batches", h.Payroll.RecomputeBatch)
					r.Post("/notifications", h.Notification.DispatchBatch)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/salaries.xlsx", h.Report.SalaryWorkbook)
				r.Get("/salaries.pdf", h.Report.BatchPDF)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.Employee.ListEmployees)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Employee.GetEmployee)
					r.Get("/attendance", h.Attendance.GetSummary)
					r.With(middleware.RequirePayrollWriter).Delete("/", h.Employee.DeleteEmployee)
				})
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Employee.ListDepartments)
				r.With(middleware.RequirePayrollWriter).Delete("/{id}", h.Employee.DeleteDepartment)
			})

			r.With(middleware.RequirePayrollWriter).Get("/audit", h.Audit.List)
		})
	})
	return r
}

// Logger builds the ECS-formatted JSON logger shared by the request logger
// and the rest of the process.
func Logger(opts RouterOptions) *slog.Logger {
	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)
}
