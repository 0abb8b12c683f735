package ai

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AIService holds the Gemini client and a database connection the
// assistant may query. Only SELECTs are ever executed on it.
type AIService struct {
	Client *genai.Client
	DB     *sql.DB
}

// NewAIService initializes the Gemini client.
func NewAIService(apiKey string, db *sql.DB) (*AIService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &AIService{Client: client, DB: db}, nil
}

// GenerateResponse answers a student/instructor question about the
// catalog. The model can look facts up through the run_readonly_sql
// tool. Returns the answer text and the token count for usage tracking.
func (s *AIService) GenerateResponse(ctx context.Context, userMessage, userRole string) (string, int, error) {
	model := s.Client.GenerativeModel("gemini-1.5-flash")

	sqlTool := &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "run_readonly_sql",
				Description: "Executes a READ-ONLY SQL query (SELECT only) to answer questions about courses and enrollments.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {
							Type:        genai.TypeString,
							Description: "The MySQL SELECT query to execute.",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}
	model.Tools = []*genai.Tool{sqlTool}

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(`
			You are the BrainiX learning assistant. You are talking to a %s.
			You can query the catalog through run_readonly_sql.
			Schema: %s
			Rules: SELECT only. Never reveal other users' personal data.
			Recommend courses from the catalog when asked; be concise.
		`, strings.ToLower(userRole), s.schemaDefinition()))},
	}

	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(userMessage))
	if err != nil {
		return "", 0, fmt.Errorf("error sending message: %w", err)
	}

	totalTokens := 0
	if res.UsageMetadata != nil {
		totalTokens = int(res.UsageMetadata.TotalTokenCount)
	}

	for {
		if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
			return "No response.", totalTokens, nil
		}
		part := res.Candidates[0].Content.Parts[0]

		funcCall, ok := part.(genai.FunctionCall)
		if !ok {
			return fmt.Sprintf("%v", part), totalTokens, nil
		}

		if funcCall.Name != "run_readonly_sql" {
			return "", totalTokens, fmt.Errorf("unknown function: %s", funcCall.Name)
		}

		query, ok := funcCall.Args["query"].(string)
		if !ok {
			return "", totalTokens, errors.New("invalid query argument")
		}
		log.Printf("AI running SQL: %s", query)

		sqlResult, sqlErr := s.runReadOnlyQuery(ctx, query)
		if sqlErr != nil {
			sqlResult = fmt.Sprintf("SQL Error: %v", sqlErr)
		}

		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     "run_readonly_sql",
			Response: map[string]interface{}{"result": sqlResult},
		})
		if err != nil {
			return "", totalTokens, fmt.Errorf("tool response error: %w", err)
		}
		if res.UsageMetadata != nil {
			totalTokens = int(res.UsageMetadata.TotalTokenCount)
		}
	}
}

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// GenerateQuiz asks the model for multiple-choice questions about a
// course and validates the returned JSON before handing it back.
func (s *AIService) GenerateQuiz(ctx context.Context, courseTitle string, count int) ([]QuizQuestion, int, error) {
	model := s.Client.GenerativeModel("gemini-1.5-flash")

	prompt := fmt.Sprintf(`Generate %d multiple-choice quiz questions for a student
		of the course %q. Respond with ONLY a JSON array, no prose, where each
		element is {"question": string, "options": [4 strings], "answer": index 0-3}.`,
		count, courseTitle)

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, 0, fmt.Errorf("quiz generation failed: %w", err)
	}

	totalTokens := 0
	if res.UsageMetadata != nil {
		totalTokens = int(res.UsageMetadata.TotalTokenCount)
	}
	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, totalTokens, errors.New("empty quiz response")
	}

	raw := fmt.Sprintf("%v", res.Candidates[0].Content.Parts[0])
	questions, err := ParseQuiz(raw)
	if err != nil {
		return nil, totalTokens, err
	}
	return questions, totalTokens, nil
}

// ParseQuiz decodes the model's quiz output, tolerating the markdown
// code fences Gemini likes to wrap JSON in.
func ParseQuiz(raw string) ([]QuizQuestion, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var questions []QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("model returned malformed quiz JSON: %w", err)
	}
	if len(questions) == 0 {
		return nil, errors.New("model returned no questions")
	}
	for i, q := range questions {
		if q.Question == "" || len(q.Options) < 2 || q.Answer < 0 || q.Answer >= len(q.Options) {
			return nil, fmt.Errorf("question %d is malformed", i)
		}
	}
	return questions, nil
}

// runReadOnlyQuery executes a model-authored SELECT and serializes the
// rows to JSON for the tool response.
func (s *AIService) runReadOnlyQuery(ctx context.Context, query string) (string, error) {
	normalized := strings.ToUpper(query)
	for _, verb := range []string{"UPDATE", "DELETE", "DROP", "INSERT", "ALTER", "TRUNCATE"} {
		if strings.Contains(normalized, verb) {
			return "", fmt.Errorf("security violation: modify operations are not allowed")
		}
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, _ := rows.Columns()
	count := len(columns)
	tableData := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, count)
		valuePtrs := make([]interface{}, count)
		for i := range columns {
			valuePtrs[i] = &values[i]
		}
		rows.Scan(valuePtrs...)
		entry := make(map[string]interface{})
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				entry[col] = string(b)
			} else {
				entry[col] = values[i]
			}
		}
		tableData = append(tableData, entry)
	}

	jsonData, err := json.Marshal(tableData)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (s *AIService) schemaDefinition() string {
	return `
	- users (id, email, name, role [STUDENT, INSTRUCTOR, ADMIN], total_courses, total_spent)
	- courses (id, slug, title, description, instructor_id, price, discount_price, published, total_students)
	- enrollments (id, user_id, course_id, status [ACTIVE, COMPLETED, EXPIRED, REFUNDED], enrolled_at)
	- orders (id, order_number, user_id, status, total, discount, currency, created_at)
	- order_items (id, order_id, course_id, price)
	- coupons (id, code, discount_type [PERCENTAGE, FIXED], discount_value, start_date, end_date, is_active)
	- cart_items (id, user_id, course_id, added_at)
	`
}
