package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "rsl7tickets0001",
			"name": "tickets",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_user_id",
					"name": "user_id",
					"type": "text",
					"required": true,
					"presentable": false
				},
				{
					"id": "text_event_id",
					"name": "event_id",
					"type": "text",
					"required": true,
					"presentable": false
				},
				{
					"id": "text_event_name",
					"name": "event_name",
					"type": "text",
					"required": false,
					"presentable": true
				},
				{
					"id": "date_event_start",
					"name": "event_start_date",
					"type": "date",
					"required": false,
					"presentable": false
				},
				{
					"id": "text_event_city",
					"name": "event_city",
					"type": "text",
					"required": false,
					"presentable": false
				},
				{
					"id": "text_event_state",
					"name": "event_state",
					"type": "text",
					"required": false,
					"presentable": false
				},
				{
					"id": "number_unit_price",
					"name": "unit_price",
					"type": "number",
					"required": true,
					"presentable": false,
					"min": 0,
					"noDecimal": false
				},
				{
					"id": "number_quantity",
					"name": "quantity",
					"type": "number",
					"required": true,
					"presentable": false,
					"min": 1,
					"noDecimal": true
				},
				{
					"id": "select_status",
					"name": "status",
					"type": "select",
					"required": true,
					"presentable": false,
					"maxSelect": 1,
					"values": [
						"active",
						"pending_verification",
						"verified",
						"used",
						"cancelled",
						"expired",
						"pending_transfer",
						"transferred",
						"sold",
						"invalid",
						"revoked"
					]
				},
				{
					"id": "text_order_id",
					"name": "order_id",
					"type": "text",
					"required": false,
					"presentable": false
				},
				{
					"id": "autodate_created",
					"name": "created",
					"type": "autodate",
					"onCreate": true,
					"onUpdate": false
				},
				{
					"id": "autodate_updated",
					"name": "updated",
					"type": "autodate",
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_tickets_user_id ON tickets (user_id)",
				"CREATE INDEX idx_tickets_status ON tickets (status)"
			],
			"listRule": null,
			"viewRule": null,
			"createRule": null,
			"updateRule": null,
			"deleteRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("rsl7tickets0001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
