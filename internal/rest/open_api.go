package rest

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
)

// NewOpenAPI3 instantiates the OpenAPI specification for this service.
func NewOpenAPI3() openapi3.T {
	swagger := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "Tasks API",
			Description: "REST API used for interacting with Tasks and Categories",
			Version:     "0.1.0",
			License: &openapi3.License{
				Name: "MIT",
				URL:  "https://opensource.org/licenses/MIT",
			},
		},
		Servers: openapi3.Servers{
			&openapi3.Server{
				Description: "Local development",
				URL:         "http://0.0.0.0:9234",
			},
		},
	}

	swagger.Components.SecuritySchemes = openapi3.SecuritySchemes{
		"bearerAuth": &openapi3.SecuritySchemeRef{
			Value: openapi3.NewSecurityScheme().
				WithType("http").
				WithScheme("bearer"),
		},
	}

	swagger.Components.Schemas = openapi3.Schemas{
		"Status": openapi3.NewSchemaRef("",
			openapi3.NewStringSchema().
				WithEnum("TODO", "IN_PROGRESS", "DONE").
				WithDefault("TODO")),
		"Priority": openapi3.NewSchemaRef("",
			openapi3.NewStringSchema().
				WithEnum("LOW", "MEDIUM", "HIGH").
				WithDefault("MEDIUM")),
		"Task": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("title", openapi3.NewStringSchema().WithMinLength(3).WithMaxLength(200)).
				WithProperty("description", openapi3.NewStringSchema()).
				WithPropertyRef("status", openapi3.NewSchemaRef("#/components/schemas/Status", nil)).
				WithPropertyRef("priority", openapi3.NewSchemaRef("#/components/schemas/Priority", nil)).
				WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date").WithNullable()).
				WithProperty("category", openapi3.NewUUIDSchema().WithNullable()).
				WithProperty("user", openapi3.NewStringSchema().WithFormat("email")).
				WithProperty("created_at", openapi3.NewStringSchema().WithFormat("date-time")).
				WithProperty("updated_at", openapi3.NewStringSchema().WithFormat("date-time"))),
		"Category": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("name", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(100)).
				WithProperty("color", openapi3.NewStringSchema().WithMaxLength(20))),
		"User": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
				WithProperty("first_name", openapi3.NewStringSchema()).
				WithProperty("last_name", openapi3.NewStringSchema())),
		"TaskStatistics": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("total_tasks", openapi3.NewInt64Schema()).
				WithProperty("todo_count", openapi3.NewInt64Schema()).
				WithProperty("in_progress_count", openapi3.NewInt64Schema()).
				WithProperty("done_count", openapi3.NewInt64Schema()).
				WithProperty("high_priority_count", openapi3.NewInt64Schema()).
				WithProperty("overdue_count", openapi3.NewInt64Schema())),
		"TaskPage": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("count", openapi3.NewInt64Schema()).
				WithProperty("next", openapi3.NewStringSchema().WithNullable()).
				WithProperty("previous", openapi3.NewStringSchema().WithNullable()).
				WithPropertyRef("results", openapi3.NewSchemaRef("",
					openapi3.NewArraySchema().WithItems(openapi3.NewSchema())))),
		"ErrorResponse": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("error", openapi3.NewBoolSchema()).
				WithProperty("message", openapi3.NewStringSchema()).
				WithProperty("status_code", openapi3.NewIntegerSchema()).
				WithProperty("details", openapi3.NewObjectSchema())),
	}

	swagger.Components.RequestBodies = openapi3.RequestBodies{
		"CreateTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for creating or replacing a task.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("title", openapi3.NewStringSchema().WithMinLength(3).WithMaxLength(200)).
					WithProperty("description", openapi3.NewStringSchema()).
					WithPropertyRef("status", openapi3.NewSchemaRef("#/components/schemas/Status", nil)).
					WithPropertyRef("priority", openapi3.NewSchemaRef("#/components/schemas/Priority", nil)).
					WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date").WithNullable()).
					WithProperty("category", openapi3.NewUUIDSchema().WithNullable())),
		},
		"UpdateTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for partially updating a task, absent fields keep their stored values.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("title", openapi3.NewStringSchema().WithMinLength(3).WithMaxLength(200)).
					WithProperty("description", openapi3.NewStringSchema()).
					WithPropertyRef("status", openapi3.NewSchemaRef("#/components/schemas/Status", nil)).
					WithPropertyRef("priority", openapi3.NewSchemaRef("#/components/schemas/Priority", nil)).
					WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date").WithNullable()).
					WithProperty("category", openapi3.NewUUIDSchema().WithNullable())),
		},
		"BulkUpdateStatusRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for updating the status of many tasks at once.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithPropertyRef("ids", openapi3.NewSchemaRef("",
						openapi3.NewArraySchema().WithItems(openapi3.NewUUIDSchema()))).
					WithPropertyRef("status", openapi3.NewSchemaRef("#/components/schemas/Status", nil))),
		},
		"CreateCategoryRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for creating or updating a category.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("name", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(100)).
					WithProperty("color", openapi3.NewStringSchema().WithMaxLength(20))),
		},
		"RegisterUserRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for registering a user.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
					WithProperty("first_name", openapi3.NewStringSchema()).
					WithProperty("last_name", openapi3.NewStringSchema()).
					WithProperty("password", openapi3.NewStringSchema().WithMinLength(8)).
					WithProperty("password_confirm", openapi3.NewStringSchema().WithMinLength(8))),
		},
		"LoginRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for logging in.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
					WithProperty("password", openapi3.NewStringSchema())),
		},
	}

	swagger.Components.Responses = openapi3.Responses{
		"ErrorResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response when an error happens.").
				WithContent(openapi3.NewContentWithJSONSchemaRef(
					openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil))),
		},
		"TaskResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returning a task.").
				WithContent(openapi3.NewContentWithJSONSchemaRef(
					openapi3.NewSchemaRef("#/components/schemas/Task", nil))),
		},
		"TaskPageResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returning one page of tasks.").
				WithContent(openapi3.NewContentWithJSONSchemaRef(
					openapi3.NewSchemaRef("#/components/schemas/TaskPage", nil))),
		},
		"TaskStatisticsResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returning the task statistics.").
				WithContent(openapi3.NewContentWithJSONSchemaRef(
					openapi3.NewSchemaRef("#/components/schemas/TaskStatistics", nil))),
		},
		"CategoryResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returning a category.").
				WithContent(openapi3.NewContentWithJSONSchemaRef(
					openapi3.NewSchemaRef("#/components/schemas/Category", nil))),
		},
		"UserResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returning a user.").
				WithContent(openapi3.NewContentWithJSONSchemaRef(
					openapi3.NewSchemaRef("#/components/schemas/User", nil))),
		},
	}

	security := openapi3.NewSecurityRequirement().Authenticate("bearerAuth")

	listParameters := openapi3.Parameters{
		{Value: openapi3.NewQueryParameter("status").WithSchema(openapi3.NewStringSchema())},
		{Value: openapi3.NewQueryParameter("priority").WithSchema(openapi3.NewStringSchema())},
		{Value: openapi3.NewQueryParameter("title").WithSchema(openapi3.NewStringSchema())},
		{Value: openapi3.NewQueryParameter("due_date_from").WithSchema(openapi3.NewStringSchema().WithFormat("date"))},
		{Value: openapi3.NewQueryParameter("due_date_to").WithSchema(openapi3.NewStringSchema().WithFormat("date"))},
		{Value: openapi3.NewQueryParameter("search").WithSchema(openapi3.NewStringSchema())},
		{Value: openapi3.NewQueryParameter("ordering").WithSchema(openapi3.NewStringSchema())},
		{Value: openapi3.NewQueryParameter("page").WithSchema(openapi3.NewIntegerSchema())},
	}

	idParameter := openapi3.Parameters{
		{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())},
	}

	swagger.Paths = openapi3.Paths{
		"/tasks": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListTasks",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  listParameters,
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskPageResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Post: &openapi3.Operation{
				OperationID: "CreateTask",
				Security:    openapi3.NewSecurityRequirements().With(security),
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateTaskRequest"},
				Responses: openapi3.Responses{
					"201": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/tasks/overdue": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListOverdueTasks",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  listParameters,
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskPageResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/tasks/statistics": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "TaskStatistics",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskStatisticsResponse"},
				},
			},
		},
		"/tasks/bulk-status": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "BulkUpdateTaskStatus",
				Security:    openapi3.NewSecurityRequirements().With(security),
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/BulkUpdateStatusRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("Response returning how many tasks changed.").
							WithContent(openapi3.NewContentWithJSONSchema(
								openapi3.NewObjectSchema().
									WithProperty("updated", openapi3.NewInt64Schema()))),
					},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/tasks/{id}": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ReadTask",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  idParameter,
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Put: &openapi3.Operation{
				OperationID: "UpdateTask",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  idParameter,
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateTaskRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Patch: &openapi3.Operation{
				OperationID: "PatchTask",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  idParameter,
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/UpdateTaskRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteTask",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  idParameter,
				Responses: openapi3.Responses{
					"204": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription("Task deleted."),
					},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/categories": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListCategories",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("Response returning all categories ordered by name.").
							WithContent(openapi3.NewContentWithJSONSchemaRef(
								openapi3.NewSchemaRef("",
									openapi3.NewArraySchema().WithItems(openapi3.NewSchema())))),
					},
				},
			},
			Post: &openapi3.Operation{
				OperationID: "CreateCategory",
				Security:    openapi3.NewSecurityRequirements().With(security),
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateCategoryRequest"},
				Responses: openapi3.Responses{
					"201": &openapi3.ResponseRef{Ref: "#/components/responses/CategoryResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/categories/{id}": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ReadCategory",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  idParameter,
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/CategoryResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Put: &openapi3.Operation{
				OperationID: "UpdateCategory",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  idParameter,
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateCategoryRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/CategoryResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Patch: &openapi3.Operation{
				OperationID: "PatchCategory",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  idParameter,
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateCategoryRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/CategoryResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteCategory",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Parameters:  idParameter,
				Responses: openapi3.Responses{
					"204": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription("Category deleted."),
					},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/users": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "RegisterUser",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/RegisterUserRequest"},
				Responses: openapi3.Responses{
					"201": &openapi3.ResponseRef{Ref: "#/components/responses/UserResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/users/login": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "Login",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/LoginRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("Response returning the session token.").
							WithContent(openapi3.NewContentWithJSONSchema(
								openapi3.NewObjectSchema().
									WithProperty("token", openapi3.NewStringSchema()))),
					},
					"401": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/users/logout": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "Logout",
				Security:    openapi3.NewSecurityRequirements().With(security),
				Responses: openapi3.Responses{
					"204": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription("Session invalidated."),
					},
				},
			},
		},
	}

	return swagger
}

// RegisterOpenAPI connects the OpenAPI document handlers to the router.
func RegisterOpenAPI(r chi.Router) {
	swagger := NewOpenAPI3()

	r.Get("/openapi3.json", func(w http.ResponseWriter, _ *http.Request) {
		renderResponse(w, &swagger, http.StatusOK)
	})

	r.Get("/openapi3.yaml", func(w http.ResponseWriter, _ *http.Request) {
		data, err := yaml.Marshal(&swagger)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/x-yaml")
		w.WriteHeader(http.StatusOK)

		_, _ = w.Write(data)
	})
}
