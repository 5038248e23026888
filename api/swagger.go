package api

//go:generate swag init -g api/swagger.go -d ../ -o ../docs/swagger

// @title       Symptom Disease Predictor API
// @version     1.0
// @description Predicts a likely disease from reported symptoms.
// @contact.name  Saqib Ullah
// @contact.url   https://github.com/saqibullah/symptom-disease-predictor
// @BasePath    /
