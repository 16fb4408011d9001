package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "rsl7orders00001",
			"name": "orders",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_buyer_id",
					"name": "buyer_id",
					"type": "text",
					"required": true,
					"presentable": false
				},
				{
					"id": "text_seller_id",
					"name": "seller_id",
					"type": "text",
					"required": true,
					"presentable": false
				},
				{
					"id": "rel_ticket",
					"name": "ticket_id",
					"type": "relation",
					"required": true,
					"presentable": false,
					"collectionId": "rsl7tickets0001",
					"cascadeDelete": false,
					"maxSelect": 1
				},
				{
					"id": "number_amount",
					"name": "amount",
					"type": "number",
					"required": true,
					"presentable": false,
					"min": 0,
					"noDecimal": false
				},
				{
					"id": "select_status",
					"name": "status",
					"type": "select",
					"required": true,
					"presentable": false,
					"maxSelect": 1,
					"values": [
						"pending_payment",
						"paid",
						"pending_transfer",
						"seller_marked_transferred",
						"buyer_confirmed",
						"completed",
						"cancelled",
						"dispute_open",
						"refunded"
					]
				},
				{
					"id": "text_escrow_txn",
					"name": "escrow_transaction_id",
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
				"CREATE INDEX idx_orders_buyer_id ON orders (buyer_id)",
				"CREATE INDEX idx_orders_seller_id ON orders (seller_id)",
				"CREATE UNIQUE INDEX idx_orders_ticket_id ON orders (ticket_id)"
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
		collection, err := app.FindCollectionByNameOrId("rsl7orders00001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
