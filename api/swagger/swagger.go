package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Scheduler API",
        "description": "Timetable consistency and enrollment engine for school scheduling",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Users", "description": "User management"},
        {"name": "Classes", "description": "Class management"},
        {"name": "TimeSlots", "description": "Weekly slot assignment"},
        {"name": "Enrollments", "description": "Student enrollment"},
        {"name": "Schedules", "description": "Timetable views and exports"},
        {"name": "Metrics", "description": "Engine metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Store unavailable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login with email and password",
                "responses": {
                    "200": {"description": "Access token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/time-slots": {
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Assign a weekly time slot to a class",
                "responses": {
                    "201": {"description": "Slot committed"},
                    "404": {"description": "Class not found"},
                    "409": {"description": "Teacher or room double-booked"}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a class",
                "responses": {
                    "201": {"description": "Enrollment committed"},
                    "404": {"description": "Student or class not found"},
                    "409": {"description": "Capacity full or schedule conflict"},
                    "422": {"description": "User is not a student"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "School Scheduler API",
	Description:      "Timetable consistency and enrollment engine for school scheduling",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
