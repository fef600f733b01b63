package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Client talks to the OpenRouter chat-completions API to pull structured
// inspection data out of a spreadsheet dump.
type Client struct {
	APIKey  string
	BaseURL string
	Model   string
	HTTP    *retryablehttp.Client
}

func NewClient(apiKey string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 60 * time.Second
	rc.Logger = nil
	return &Client{
		APIKey:  apiKey,
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "anthropic/claude-3.5-sonnet",
		HTTP:    rc,
	}
}

type Reading struct {
	Position  string  `json:"position"`
	Thickness float64 `json:"thickness"`
}

type CourseReadings struct {
	CourseNumber int       `json:"course_number"`
	Readings     []Reading `json:"readings"`
}

type NozzleReadings struct {
	NozzleID string    `json:"nozzle_id"`
	Readings []Reading `json:"readings"`
}

type TankInfo struct {
	TankNumber       string  `json:"tank_number"`
	ClientName       string  `json:"client_name"`
	Location         string  `json:"location"`
	EquipmentID      string  `json:"equipment_id"`
	DiameterFt       float64 `json:"diameter_ft"`
	HeightFt         float64 `json:"height_ft"`
	CapacityGal      float64 `json:"capacity_gal"`
	Product          string  `json:"product"`
	SpecificGravity  float64 `json:"specific_gravity"`
	ConstructionCode string  `json:"construction_code"`
	YearBuilt        int     `json:"year_built"`
	ShellMaterial    string  `json:"shell_material"`
	RoofType         string  `json:"roof_type"`
	FoundationType   string  `json:"foundation_type"`
	NumberOfCourses  int     `json:"number_of_courses"`
}

type InspectionInfo struct {
	InspectionDate         string  `json:"inspection_date"`
	InspectionType         string  `json:"inspection_type"`
	InspectorName          string  `json:"inspector_name"`
	InspectorCertification string  `json:"inspector_certification"`
	InspectionCompany      string  `json:"inspection_company"`
	TestMethods            string  `json:"test_methods"`
	CorrosionAllowance     float64 `json:"corrosion_allowance"`
	JointEfficiency        float64 `json:"joint_efficiency"`
}

type Extraction struct {
	TankInfo       TankInfo         `json:"tank_info"`
	InspectionInfo InspectionInfo   `json:"inspection_info"`
	ThicknessData  []CourseReadings `json:"thickness_data"`
	NozzleData     []NozzleReadings `json:"nozzle_data"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) Extract(ctx context.Context, excelText string) (Extraction, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    []chatMessage{{Role: "user", Content: buildPrompt(excelText)}},
		MaxTokens:   4000,
		Temperature: 0.1, // low temperature keeps extraction deterministic
	})
	if err != nil {
		return Extraction{}, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Extraction{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return Extraction{}, fmt.Errorf("openrouter request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return Extraction{}, fmt.Errorf("openrouter status %d: %s", res.StatusCode, string(b))
	}

	var out chatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Extraction{}, err
	}
	if len(out.Choices) == 0 {
		return Extraction{}, fmt.Errorf("empty completion")
	}
	return parseReply(out.Choices[0].Message.Content)
}

// parseReply pulls the first balanced JSON object out of the model reply. The
// model occasionally wraps the JSON in prose despite instructions.
func parseReply(content string) (Extraction, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return Extraction{}, fmt.Errorf("no JSON found in completion")
	}
	var ex Extraction
	if err := json.Unmarshal([]byte(content[start:end+1]), &ex); err != nil {
		return Extraction{}, fmt.Errorf("completion parse: %w", err)
	}
	return ex, nil
}

func buildPrompt(excelText string) string {
	var b strings.Builder
	b.WriteString("You are an expert API 653 tank inspection data extraction specialist. ")
	b.WriteString("Analyze the following Excel file content and extract structured data for a tank inspection database.\n\n")
	b.WriteString("EXCEL FILE CONTENT:\n")
	b.WriteString(excelText)
	b.WriteString("\n\nExtract tank information (tank_number, client_name, location, equipment_id, ")
	b.WriteString("diameter_ft, height_ft, capacity_gal, product, specific_gravity, construction_code, ")
	b.WriteString("year_built, shell_material, roof_type, foundation_type, number_of_courses), ")
	b.WriteString("inspection information (inspection_date as YYYY-MM-DD, inspection_type, inspector_name, ")
	b.WriteString("inspector_certification, inspection_company, test_methods, corrosion_allowance, joint_efficiency), ")
	b.WriteString("thickness_data as an array of {course_number, readings:[{position, thickness}]} ")
	b.WriteString("and nozzle_data as an array of {nozzle_id, readings:[{position, thickness}]}.\n")
	b.WriteString("Use null for missing values and make sure all numbers are plain numbers. ")
	b.WriteString("Return ONLY valid JSON with keys tank_info, inspection_info, thickness_data, nozzle_data. ")
	b.WriteString("No additional text or explanations.\n")
	return b.String()
}
