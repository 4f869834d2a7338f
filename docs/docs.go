// Package docs регистрирует OpenAPI-описание HTTP API дашборда для /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/login": {
            "post": {
                "description": "Проверяет пару логин/пароль из конфига и выдаёт JWT с ролью admin или collector.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Вход в дашборд",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/login.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "Сессия", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный JSON", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Неверные учётные данные", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/exec": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Возвращает все три таблицы: абонентов, тарифы и платежи.",
                "produces": ["application/json"],
                "tags": ["Shim"],
                "summary": "Прочитать все таблицы",
                "responses": {
                    "200": {"description": "Снимок таблиц", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Нет токена", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Выполняет действие GET_ALL_DATA, ADD_USER, UPDATE_USER, DELETE_USER, ADD_PRODUCT, UPDATE_PRODUCT, DELETE_PRODUCT, ADD_PAYMENT или DELETE_PAYMENT. Тело принимается как application/json или text/plain.",
                "consumes": ["application/json", "text/plain"],
                "produces": ["application/json"],
                "tags": ["Shim"],
                "summary": "Выполнить действие",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/shim.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "Результат действия", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный JSON", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Действие недоступно роли", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Запись не найдена", "schema": {"$ref": "#/definitions/response.Response"}},
                    "409": {"description": "Дубликат id", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Неизвестное действие или ошибка валидации", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/payments/{id}/receipt": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "HTML-квитанция для печати.",
                "produces": ["text/html"],
                "tags": ["Payments"],
                "summary": "Квитанция об оплате",
                "parameters": [
                    {"type": "string", "description": "ID платежа", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "HTML"},
                    "404": {"description": "Платёж не найден", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/plans/describe": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Plans"],
                "summary": "Рекламное описание тарифа через Gemini",
                "description": "Без ключа API или при сбое модели возвращает текст-заглушку и generated=false.",
                "parameters": [
                    {"description": "Название, скорость и цена тарифа", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/describe.Request"}}
                ],
                "responses": {
                    "200": {"description": "Описание", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректное тело", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Только для администратора", "schema": {"$ref": "#/definitions/response.Response"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Сводка: выручка, активные абоненты, загрузка тарифов",
                "responses": {
                    "200": {"description": "Сводка", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Только для администратора", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/reminders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Абоненты с оплатой в ближайшие три дня и ссылки mailto",
                "responses": {
                    "200": {"description": "Напоминания", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Только для администратора", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Reports"],
                "summary": "Выгрузка всех таблиц в xlsx",
                "responses": {
                    "200": {"description": "Книга с листами Users, Products и Payments"},
                    "403": {"description": "Только для администратора", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "describe.Request": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "price": {"type": "number"},
                "speed": {"type": "integer"}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "shim.Request": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "example": "ADD_PAYMENT"},
                "payload": {"type": "object"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "message": {"type": "string"},
                "data": {}
            }
        }
    }
}`

// SwaggerInfo метаданные документа, их можно поменять во время выполнения.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "WiFiNet Dashboard API",
	Description:      "Таблицы абонентов, тарифов и платежей провайдера, отчёты и квитанции.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
