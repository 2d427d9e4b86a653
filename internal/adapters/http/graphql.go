package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"min_x": &graphql.Field{Type: graphql.Float},
			"max_x": &graphql.Field{Type: graphql.Float},
			"min_y": &graphql.Field{Type: graphql.Float},
			"max_y": &graphql.Field{Type: graphql.Float},
		},
	})

	rangeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LineRange",
		Fields: graphql.Fields{
			"min": &graphql.Field{Type: graphql.Int},
			"max": &graphql.Field{Type: graphql.Int},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SurveySummary",
		Fields: graphql.Fields{
			"trace_count":        &graphql.Field{Type: graphql.Int},
			"byte_size":          &graphql.Field{Type: graphql.Float},
			"bounds":             &graphql.Field{Type: boundsType},
			"area":               &graphql.Field{Type: graphql.Float},
			"inline_range":       &graphql.Field{Type: rangeType},
			"crossline_range":    &graphql.Field{Type: rangeType},
			"sample_interval_us": &graphql.Field{Type: graphql.Float},
		},
	})

	amplitudesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AmplitudeStats",
		Fields: graphql.Fields{
			"mean":         &graphql.Field{Type: graphql.Float},
			"median":       &graphql.Field{Type: graphql.Float},
			"std_dev":      &graphql.Field{Type: graphql.Float},
			"min":          &graphql.Field{Type: graphql.Float},
			"max":          &graphql.Field{Type: graphql.Float},
			"rms":          &graphql.Field{Type: graphql.Float},
			"sample_count": &graphql.Field{Type: graphql.Int},
		},
	})

	datasetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dataset",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"file_name":   &graphql.Field{Type: graphql.String},
			"byte_size":   &graphql.Field{Type: graphql.Float},
			"uploaded_at": &graphql.Field{Type: graphql.String},
			"summary":     &graphql.Field{Type: summaryType},
			"amplitudes":  &graphql.Field{Type: amplitudesType},
		},
	})

	coverageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CoverageReport",
		Fields: graphql.Fields{
			"datasets":    &graphql.Field{Type: graphql.Int},
			"traces":      &graphql.Field{Type: graphql.Int},
			"total_bytes": &graphql.Field{Type: graphql.Float},
			"bounds":      &graphql.Field{Type: boundsType},
			"total_area":  &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"datasets": &graphql.Field{
				Type:        graphql.NewList(datasetType),
				Description: "List all analyzed datasets",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Datasets.List(p.Context)
				},
			},
			"dataset": &graphql.Field{
				Type:        datasetType,
				Description: "Get a dataset by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Datasets.GetByID(p.Context, id)
				},
			},
			"coverage": &graphql.Field{
				Type:        coverageType,
				Description: "Survey coverage aggregated across all datasets",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Datasets.Coverage(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
